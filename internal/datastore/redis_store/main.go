package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletv5/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	WALLET_SNAPSHOT_TTL = 24 * time.Hour

	keyOutboxPending = "outbox:pending"
)

func dbKeyWalletSnapshot(address string) string {
	return fmt.Sprintf("wallet:snapshot:%s", address)
}

func GetWalletSnapshot(ctx context.Context, cmd redis.Cmdable, address string) (*models.WalletSnapshot, error) {
	b, err := cmd.Get(ctx, dbKeyWalletSnapshot(address)).Bytes()
	if err != nil {
		return nil, err
	}

	var v models.WalletSnapshot
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func SetWalletSnapshot(ctx context.Context, cmd redis.Cmdable, snapshot *models.WalletSnapshot) error {
	if snapshot == nil {
		return errors.New("nil snapshot")
	}
	b, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}
	return cmd.Set(ctx, dbKeyWalletSnapshot(snapshot.Address), b, WALLET_SNAPSHOT_TTL).Err()
}

func DeleteWalletSnapshot(ctx context.Context, cmd redis.Cmdable, address string) error {
	return cmd.Del(ctx, dbKeyWalletSnapshot(address)).Err()
}

// PushOutMessages queues message ids for the relay, oldest first.
func PushOutMessages(ctx context.Context, cmd redis.Cmdable, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	vs := make([]any, len(ids))
	for i, id := range ids {
		vs[i] = id
	}
	return cmd.LPush(ctx, keyOutboxPending, vs...).Err()
}

func PopOutMessages(ctx context.Context, cmd redis.Cmdable, count int) ([]string, error) {
	ids, err := cmd.RPopCount(ctx, keyOutboxPending, count).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	return ids, err
}

func CountPendingOutMessages(ctx context.Context, cmd redis.Cmdable) (int64, error) {
	return cmd.LLen(ctx, keyOutboxPending).Result()
}
