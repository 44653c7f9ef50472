package contract

import (
	"crypto/ed25519"
	"fmt"
	"math"
	"time"

	"walletv5/internal/pkg/ton_utils"
)

// Authenticate runs the owner checks in order and stops at the first failure. It
// never mutates state; the seqno bump is applied by the caller together with the
// action batch.
func Authenticate(state *AccountState, req *SignedRequest, now time.Time) error {
	if !state.SignatureAllowed {
		return ErrSignatureAuthDisabled
	}

	expected, err := ton_utils.PackWalletID(state.Identity)
	if err != nil || req.WalletID != expected {
		return fmt.Errorf("%w: got %d, want %d", ErrIdentityMismatch, req.WalletID, expected)
	}

	if req.Seqno != state.Seqno {
		return fmt.Errorf("%w: got %d, want %d", ErrReplayOrStale, req.Seqno, state.Seqno)
	}
	if state.Seqno == math.MaxUint32 {
		return fmt.Errorf("%w: seqno exhausted", ErrReplayOrStale)
	}

	if int64(req.ValidUntil) <= now.Unix() {
		return fmt.Errorf("%w: valid until %d", ErrExpired, req.ValidUntil)
	}

	if !ton_utils.SignatureVerify(ed25519.PublicKey(state.PublicKey[:]), req.SignedHash[:], req.Signature[:]) {
		return ErrBadSignature
	}
	return nil
}
