package contract

import (
	"crypto/ed25519"
	"fmt"

	"github.com/tonkeeper/tongo/boc"

	"walletv5/internal/pkg/ton_utils"
)

const (
	OpSignedExternal  uint32 = 0x7369676e // "sign"
	OpSignedInternal  uint32 = 0x73696e74 // "sint"
	OpExtensionAction uint32 = 0x6578746e // "extn"
)

// SignedRequest is the owner envelope
// op:uint32 wallet_id:int32 valid_until:uint32 seqno:uint32 inner:InnerRequest signature:bits512
// Inner is the body cell with its cursor on the inner request; actions are decoded
// only after authentication passes.
type SignedRequest struct {
	Op         uint32
	WalletID   int32
	ValidUntil uint32
	Seqno      uint32
	Inner      *boc.Cell
	Signature  [ed25519.SignatureSize]byte
	SignedHash [32]byte
}

func ParseSignedRequest(body *boc.Cell, expectedOp uint32) (*SignedRequest, error) {
	hash, signature, err := ton_utils.SplitSignedCell(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	op, err := body.ReadUint(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if uint32(op) != expectedOp {
		return nil, fmt.Errorf("%w: op 0x%08x", ErrInvalidMessage, op)
	}
	walletID, err := body.ReadInt(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	validUntil, err := body.ReadUint(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	seqno, err := body.ReadUint(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	return &SignedRequest{
		Op:         uint32(op),
		WalletID:   int32(walletID),
		ValidUntil: uint32(validUntil),
		Seqno:      uint32(seqno),
		Inner:      body,
		Signature:  signature,
		SignedHash: hash,
	}, nil
}

// BuildSignedRequest assembles and signs an owner request. op is OpSignedExternal for
// external-in delivery or OpSignedInternal when relayed through an internal message.
func BuildSignedRequest(op uint32, walletID int32, validUntil, seqno uint32, actions []Action, privateKey ed25519.PrivateKey) (*boc.Cell, error) {
	c := boc.NewCell()
	if err := c.WriteUint(uint64(op), 32); err != nil {
		return nil, err
	}
	if err := c.WriteInt(int64(walletID), 32); err != nil {
		return nil, err
	}
	if err := c.WriteUint(uint64(validUntil), 32); err != nil {
		return nil, err
	}
	if err := c.WriteUint(uint64(seqno), 32); err != nil {
		return nil, err
	}
	if err := writeInnerRequest(c, actions); err != nil {
		return nil, err
	}
	if err := ton_utils.AppendSignature(privateKey, c); err != nil {
		return nil, err
	}
	return c, nil
}

// BuildExtensionRequest assembles an extn body: op:uint32 query_id:uint64 inner:InnerRequest.
func BuildExtensionRequest(queryID uint64, actions []Action) (*boc.Cell, error) {
	c := boc.NewCell()
	if err := c.WriteUint(uint64(OpExtensionAction), 32); err != nil {
		return nil, err
	}
	if err := c.WriteUint(queryID, 64); err != nil {
		return nil, err
	}
	if err := writeInnerRequest(c, actions); err != nil {
		return nil, err
	}
	return c, nil
}
