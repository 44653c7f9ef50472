package interfaces

import (
	"context"

	"walletv5/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Relayer hands committed outbound messages to whatever delivers them.
type Relayer interface {
	Relay(ctx context.Context, messages []*models.OutMessage) error
}
