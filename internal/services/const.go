package services

import (
	"errors"
	"fmt"
	"time"
)

var ErrWalletLock = errors.New("wallet locked")
var ErrOutboxLock = errors.New("outbox relay locked")

const (
	CONFIG_SERVER_MODE                  = "SERVER_MODE"
	CONFIG_WALLET_RATE_LIMIT_PER_MINUTE = "WALLET_RATE_LIMIT_PER_MINUTE"
	CONFIG_CRONJOB_TIME_OUTBOX          = "CRONJOB_TIME_OUTBOX"
	CONFIG_OUTBOX_BATCH_SIZE            = "OUTBOX_BATCH_SIZE"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute

	WALLET_RATE_LIMIT_PER_MINUTE = 60
	OUTBOX_DEFAULT_BATCH_SIZE    = 100
	OUTBOX_STALE_AFTER           = 2 * time.Minute
	OUT_MESSAGES_DEFAULT_LIMIT   = 20
	OUT_MESSAGES_MAX_LIMIT       = 100

	DEFAULT_CRONJOB_TIME_OUTBOX = "@every 10s"
)

func LockKeyWallet(address string) string {
	return fmt.Sprintf("lock:wallet:%s", address)
}

func LockKeyOutboxRelay() string {
	return "lock:outbox-relay"
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", key)
}

func DBKeyWalletGetters(address string) string {
	return fmt.Sprintf("wallet:getters:%s", address)
}

func DBKeyWalletOutMessages(address string, page, limit int) string {
	return fmt.Sprintf("wallet:out_messages:%s:%d:%d", address, page, limit)
}

func LimitKeyWallet(address string) string {
	return fmt.Sprintf("limit:wallet:%s", address)
}
