package services

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"time"

	"walletv5/internal/contract"
	"walletv5/internal/datastore"
	"walletv5/internal/datastore/redis_store"
	"walletv5/internal/interfaces"
	"walletv5/internal/models"
	"walletv5/internal/pkg/caching"
	"walletv5/internal/pkg/limiter"
	"walletv5/internal/pkg/ton_utils"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceWallet struct {
	container       *do.Injector
	redisDB         redis.UniversalClient
	rs              *redsync.Redsync
	postgresDB      *bun.DB
	cache           caching.Cache
	readonlyCache   caching.ReadOnlyCache
	limiter         interfaces.Limiter
	serviceConfig   *ServiceConfig
	networkGlobalID int32
	now             func() time.Time
}

func NewServiceWallet(container *do.Injector) (*ServiceWallet, error) {
	vs, err := do.InvokeNamed[map[string]string](container, "envs")
	if err != nil {
		return nil, err
	}

	networkGlobalID := ton_utils.MainnetGlobalID
	if v := vs["NETWORK_GLOBAL_ID"]; v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, err
		}
		networkGlobalID = int32(id)
	}

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

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceWallet{container, db, rs, postgresDB, cache, readonlyCache, rateLimiter, serviceConfig, networkGlobalID, time.Now}, nil
}

func (service *ServiceWallet) NetworkGlobalID() int32 {
	return service.networkGlobalID
}

// deployConfig validates a deploy request against the service's network.
func deployConfig(req *models.DeployWalletRequest, networkGlobalID int32) (contract.Config, error) {
	publicKey, err := hex.DecodeString(req.PublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return contract.Config{}, errors.New("public_key must be 32 bytes of hex")
	}

	cfg := contract.DefaultConfig(ed25519.PublicKey(publicKey), networkGlobalID)
	cfg.Seqno = req.Seqno
	if req.SignatureAllowed != nil {
		cfg.SignatureAllowed = *req.SignatureAllowed
	}
	if req.Identity != nil {
		cfg.Identity = *req.Identity
		cfg.Identity.NetworkGlobalID = networkGlobalID
	}
	for _, s := range req.Extensions {
		ext, err := ton_utils.ParseAccountID(s)
		if err != nil {
			return contract.Config{}, err
		}
		cfg.Extensions = append(cfg.Extensions, ext)
	}
	return cfg, nil
}

func (service *ServiceWallet) Deploy(ctx context.Context, req *models.DeployWalletRequest) (*models.DeployWalletResponse, error) {
	cfg, err := deployConfig(req, service.networkGlobalID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	w, err := contract.Deploy(cfg)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Invalid)
	}

	account, err := walletAccountFromState(w.Address(), service.networkGlobalID, w.State())
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	mutex := service.rs.NewMutex(LockKeyWallet(account.Address))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrWalletLock, errorx.Invalid)
	}
	defer mutex.Unlock()

	if _, err := datastore.FindWalletAccount(ctx, service.postgresDB, account.Address); err == nil {
		return nil, errorx.Wrap(errors.New("wallet already deployed"), errorx.Invalid)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	account, err = datastore.CreateWalletAccount(ctx, service.postgresDB, account)
	if err != nil {
		return nil, err
	}

	if err := redis_store.SetWalletSnapshot(ctx, service.redisDB, snapshotFromAccount(account)); err != nil {
		log.Println("wallet snapshot", account.Address, err)
	}
	log.Println("Deploy wallet:", account.Address, "wallet_id:", account.WalletID, "seqno:", account.Seqno)

	return &models.DeployWalletResponse{
		Address:  account.Address,
		WalletID: account.WalletID,
		StateBoc: base64.StdEncoding.EncodeToString(account.StateBoc),
	}, nil
}

func (service *ServiceWallet) HandleExternal(ctx context.Context, address string, req *models.ExternalMessageRequest) (*models.MessageResult, error) {
	body, err := ton_utils.DecodeBocBase64(req.Boc)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	return service.process(ctx, address, func(ctx context.Context, w *contract.Wallet) (*contract.Result, error) {
		return w.HandleExternal(ctx, body)
	})
}

func (service *ServiceWallet) HandleInternal(ctx context.Context, address string, req *models.InternalMessageRequest) (*models.MessageResult, error) {
	sender, err := ton_utils.ParseAccountID(req.Sender)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	msg := contract.InternalMessage{Sender: sender, Bounced: req.Bounced}
	if req.Boc != "" {
		msg.Body, err = ton_utils.DecodeBocBase64(req.Boc)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Validation)
		}
	}

	return service.process(ctx, address, func(ctx context.Context, w *contract.Wallet) (*contract.Result, error) {
		return w.HandleInternal(ctx, msg)
	})
}

// process runs one request against the stored wallet under the wallet's lock and
// persists the outcome. Rejected requests leave storage untouched.
func (service *ServiceWallet) process(ctx context.Context, address string, handle func(context.Context, *contract.Wallet) (*contract.Result, error)) (*models.MessageResult, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	limit, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_WALLET_RATE_LIMIT_PER_MINUTE, WALLET_RATE_LIMIT_PER_MINUTE)
	if err != nil {
		log.Println(err)
	}
	err = service.limiter.Allow(ctx, LimitKeyWallet(address), redis_rate.PerMinute(limit))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return nil, errorx.Wrap(err, errorx.RateLimiting)
		}
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyWallet(address))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errorx.Wrap(ErrWalletLock, errorx.Invalid)
	}
	defer mutex.Unlock()

	snapshot, err := service.loadSnapshot(ctx, address)
	if err != nil {
		return nil, err
	}
	id, state, err := stateFromSnapshot(snapshot)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	outbox := &outboxCollector{now: service.now}
	w := contract.Restore(id, state, contract.WithOutbox(outbox), contract.WithClock(service.now))

	res, err := handle(ctx, w)
	if err != nil {
		log.Println("Reject wallet message:", address, "err:", err)
		return nil, wrapContractError(err)
	}

	result := &models.MessageResult{Accepted: res.Accepted, Seqno: res.State.GetSeqno()}
	if !res.Accepted {
		return result, nil
	}
	result.Origin = res.Origin.String()
	result.QueryID = res.QueryID
	result.Actions = actionKinds(res.Actions)

	account, err := walletAccountFromState(id, snapshot.NetworkGlobalID, res.State)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	messages := outbox.messages(res.Origin)

	err = datastore.CommitWalletAccount(ctx, service.postgresDB, account, snapshot.StateHash, messages)
	if err != nil {
		if errors.Is(err, datastore.ErrStaleWalletState) {
			//nolint:errcheck
			redis_store.DeleteWalletSnapshot(ctx, service.redisDB, address)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := redis_store.SetWalletSnapshot(ctx, service.redisDB, snapshotFromAccount(account)); err != nil {
		log.Println("wallet snapshot", address, err)
	}
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	if err := redis_store.PushOutMessages(ctx, service.redisDB, ids); err != nil {
		// the relay sweeps stale queued rows from postgres
		log.Println("push out messages", address, err)
	}
	caching.Invalidate(ctx, service.cache,
		DBKeyWalletGetters(address),
		DBKeyWalletOutMessages(address, 0, OUT_MESSAGES_DEFAULT_LIMIT),
	)

	log.Println("Accept wallet message:", address, "origin:", result.Origin, "seqno:", result.Seqno, "out:", len(messages))
	result.OutMessages = messages
	return result, nil
}

func (service *ServiceWallet) loadSnapshot(ctx context.Context, address string) (*models.WalletSnapshot, error) {
	snapshot, err := redis_store.GetWalletSnapshot(ctx, service.redisDB, address)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Println("wallet snapshot", address, err)
	}

	account, err := datastore.FindWalletAccount(ctx, service.postgresDB, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(ErrWalletNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, err
	}

	snapshot = snapshotFromAccount(account)
	if err := redis_store.SetWalletSnapshot(ctx, service.redisDB, snapshot); err != nil {
		log.Println("wallet snapshot", address, err)
	}
	return snapshot, nil
}

// GetGetters evaluates every contract getter against the stored state.
func (service *ServiceWallet) GetGetters(ctx context.Context, address string) (*models.WalletGetters, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	callback := func() (*models.WalletGetters, error) {
		snapshot, err := service.loadSnapshot(ctx, address)
		if err != nil {
			return nil, err
		}
		_, state, err := stateFromSnapshot(snapshot)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		return gettersFromState(state)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyWalletGetters(address), CACHE_TTL_5_SECONDS, callback)
}

func gettersFromState(state *contract.AccountState) (*models.WalletGetters, error) {
	extensions, err := state.GetExtensions()
	if err != nil {
		return nil, err
	}
	extensionsBoc, err := ton_utils.EncodeBocBase64(extensions)
	if err != nil {
		return nil, err
	}

	addrs := []string{}
	for _, ext := range state.GetExtensionsArray() {
		addrs = append(addrs, ext.ToRaw())
	}

	return &models.WalletGetters{
		Seqno:            state.GetSeqno(),
		PublicKey:        state.GetPublicKey().String(),
		WalletID:         state.GetWalletID(),
		WalletIDParsed:   state.GetWalletIDParsed(),
		Extensions:       extensionsBoc,
		ExtensionsArray:  addrs,
		SignatureAllowed: state.SignatureAllowed,
	}, nil
}

func normalizeAddress(address string) (string, error) {
	id, err := ton_utils.ParseAccountID(address)
	if err != nil {
		return "", errorx.Wrap(err, errorx.Validation)
	}
	return id.ToRaw(), nil
}
