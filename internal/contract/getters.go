package contract

import (
	"math/big"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/ton"

	"walletv5/internal/pkg/ton_utils"
)

// Getters read the last committed state and never block on a request in progress
// longer than its commit.

func (w *Wallet) GetSeqno() uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.GetSeqno()
}

func (w *Wallet) GetPublicKey() *big.Int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.GetPublicKey()
}

func (w *Wallet) GetWalletID() int32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.GetWalletID()
}

func (w *Wallet) GetWalletIDParsed() ton_utils.WalletID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.GetWalletIDParsed()
}

func (w *Wallet) GetExtensions() (*boc.Cell, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.GetExtensions()
}

func (w *Wallet) GetExtensionsArray() []ton.AccountID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.GetExtensionsArray()
}
