package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OUT_MESSAGE_STATUS_QUEUED  = "queued"
	OUT_MESSAGE_STATUS_RELAYED = "relayed"
)

type OutMessage struct {
	bun.BaseModel `bun:"table:out_message"`
	ID            string     `bun:"id,pk" json:"id"`
	WalletAddress string     `bun:"wallet_address" json:"wallet_address"`
	Destination   *string    `bun:"destination" json:"destination"`
	Mode          int16      `bun:"mode" json:"mode"`
	Boc           string     `bun:"boc" json:"boc"`
	Origin        string     `bun:"origin" json:"origin"`
	Status        string     `bun:"status" json:"status"`
	CreatedAt     time.Time  `bun:"created_at" json:"created_at"`
	RelayedAt     *time.Time `bun:"relayed_at" json:"relayed_at"`
}
