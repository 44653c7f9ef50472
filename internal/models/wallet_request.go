package models

import "walletv5/internal/pkg/ton_utils"

type DeployWalletRequest struct {
	PublicKey        string              `json:"public_key"`
	Seqno            uint32              `json:"seqno"`
	SignatureAllowed *bool               `json:"signature_allowed"`
	Identity         *ton_utils.WalletID `json:"identity"`
	Extensions       []string            `json:"extensions"`
}

type ExternalMessageRequest struct {
	Boc string `json:"boc"`
}

type InternalMessageRequest struct {
	Sender  string `json:"sender"`
	Bounced bool   `json:"bounced"`
	Boc     string `json:"boc"`
}

type MessageResult struct {
	Accepted    bool          `json:"accepted"`
	Origin      string        `json:"origin,omitempty"`
	QueryID     uint64        `json:"query_id,omitempty"`
	Actions     []string      `json:"actions,omitempty"`
	Seqno       uint32        `json:"seqno"`
	OutMessages []*OutMessage `json:"out_messages,omitempty"`
}

type DeployWalletResponse struct {
	Address  string `json:"address"`
	WalletID int32  `json:"wallet_id"`
	StateBoc string `json:"state_boc"`
}

type OperatorFromAuth struct {
	ID string `json:"id"`
}

// WalletGetters holds every getter result of one wallet. PublicKey is decimal.
type WalletGetters struct {
	Seqno            uint32             `json:"seqno" msgpack:"seqno"`
	PublicKey        string             `json:"public_key" msgpack:"public_key"`
	WalletID         int32              `json:"wallet_id" msgpack:"wallet_id"`
	WalletIDParsed   ton_utils.WalletID `json:"wallet_id_parsed" msgpack:"wallet_id_parsed"`
	Extensions       string             `json:"extensions" msgpack:"extensions"`
	ExtensionsArray  []string           `json:"extensions_array" msgpack:"extensions_array"`
	SignatureAllowed bool               `json:"signature_allowed" msgpack:"signature_allowed"`
}
