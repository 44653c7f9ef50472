package services

import (
	"context"
	"log"
	"time"

	"walletv5/internal/datastore"
	"walletv5/internal/datastore/redis_store"
	"walletv5/internal/interfaces"
	"walletv5/internal/models"
	"walletv5/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// LogRelayer only logs. Delivery to a network is outside this service.
type LogRelayer struct{}

func (LogRelayer) Relay(_ context.Context, messages []*models.OutMessage) error {
	for _, m := range messages {
		dest := "-"
		if m.Destination != nil {
			dest = *m.Destination
		}
		log.Println("Relay out message:", m.ID, "from:", m.WalletAddress, "to:", dest, "mode:", m.Mode)
	}
	return nil
}

type ServiceOutbox struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	rs            *redsync.Redsync
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	serviceConfig *ServiceConfig
	relayer       interfaces.Relayer
}

func NewServiceOutbox(container *do.Injector) (*ServiceOutbox, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	var relayer interfaces.Relayer = LogRelayer{}
	if r, err := do.Invoke[interfaces.Relayer](container); err == nil {
		relayer = r
	}

	return &ServiceOutbox{container, db, rs, postgresDB, cache, readonlyCache, serviceConfig, relayer}, nil
}

func (service *ServiceOutbox) ListByWallet(ctx context.Context, address string, page, limit int) ([]*models.OutMessage, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	callback := func() ([]*models.OutMessage, error) {
		return datastore.FindOutMessagesByWallet(ctx, service.postgresDB, address, limit, page*limit)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyWalletOutMessages(address, page, limit), CACHE_TTL_5_SECONDS, callback)
}

// RelayPending drains one batch from the redis queue, then sweeps queued rows that
// never made it into the queue. It returns how many messages were marked relayed.
func (service *ServiceOutbox) RelayPending(ctx context.Context) (int64, error) {
	mutex := service.rs.NewMutex(LockKeyOutboxRelay(), redsync.WithExpiry(time.Minute))
	if err := mutex.TryLockContext(ctx); err != nil {
		return 0, ErrOutboxLock
	}
	defer mutex.Unlock()

	batchSize, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_OUTBOX_BATCH_SIZE, OUTBOX_DEFAULT_BATCH_SIZE)
	if err != nil {
		log.Println(err)
	}

	ids, err := redis_store.PopOutMessages(ctx, service.redisDB, batchSize)
	if err != nil {
		return 0, err
	}
	messages, err := datastore.FindOutMessagesByIDs(ctx, service.postgresDB, ids)
	if err != nil {
		// put them back, the sweep would otherwise pick them up only after OUTBOX_STALE_AFTER
		//nolint:errcheck
		redis_store.PushOutMessages(ctx, service.redisDB, ids)
		return 0, err
	}

	if len(messages) < batchSize {
		stale, err := datastore.FindStaleQueuedOutMessages(ctx, service.postgresDB, time.Now().Add(-OUTBOX_STALE_AFTER), batchSize-len(messages))
		if err != nil {
			log.Println("sweep stale out messages", err)
		}
		messages = mergeOutMessages(messages, stale)
	}

	queued := make([]*models.OutMessage, 0, len(messages))
	for _, m := range messages {
		if m.Status == models.OUT_MESSAGE_STATUS_QUEUED {
			queued = append(queued, m)
		}
	}
	if len(queued) == 0 {
		return 0, nil
	}

	if err := service.relayer.Relay(ctx, queued); err != nil {
		return 0, err
	}

	relayedIDs := make([]string, 0, len(queued))
	wallets := map[string]struct{}{}
	for _, m := range queued {
		relayedIDs = append(relayedIDs, m.ID)
		wallets[m.WalletAddress] = struct{}{}
	}
	n, err := datastore.MarkOutMessagesRelayed(ctx, service.postgresDB, relayedIDs)
	if err != nil {
		return 0, err
	}

	for address := range wallets {
		caching.Invalidate(ctx, service.cache, DBKeyWalletOutMessages(address, 0, OUT_MESSAGES_DEFAULT_LIMIT))
	}
	return n, nil
}

// mergeOutMessages appends extra to messages, skipping ids already present.
func mergeOutMessages(messages, extra []*models.OutMessage) []*models.OutMessage {
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		seen[m.ID] = struct{}{}
	}
	for _, m := range extra {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		messages = append(messages, m)
	}
	return messages
}
