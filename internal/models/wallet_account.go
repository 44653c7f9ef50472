package models

import (
	"time"

	"github.com/uptrace/bun"
)

type WalletAccount struct {
	bun.BaseModel    `bun:"table:wallet_account"`
	Address          string    `bun:"address,pk" json:"address"`
	Workchain        int32     `bun:"workchain" json:"workchain"`
	NetworkGlobalID  int32     `bun:"network_global_id" json:"network_global_id"`
	WalletID         int32     `bun:"wallet_id" json:"wallet_id"`
	Seqno            int64     `bun:"seqno" json:"seqno"`
	PublicKey        string    `bun:"public_key" json:"public_key"`
	SignatureAllowed bool      `bun:"signature_allowed" json:"signature_allowed"`
	Extensions       []string  `bun:"extensions,array" json:"extensions"`
	StateBoc         []byte    `bun:"state_boc,type:bytea" json:"-"`
	StateHash        string    `bun:"state_hash" json:"state_hash"`
	CreatedAt        time.Time `bun:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at" json:"updated_at"`
}

// WalletSnapshot is the hot copy of a wallet kept in redis.
type WalletSnapshot struct {
	Address         string `msgpack:"address"`
	NetworkGlobalID int32  `msgpack:"network_global_id"`
	StateBoc        []byte `msgpack:"state_boc"`
	StateHash       string `msgpack:"state_hash"`
}
