package ton_utils

import (
	"fmt"

	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/ton"
)

// ParseAccountID accepts both raw (0:abcd...) and user-friendly addresses.
func ParseAccountID(s string) (ton.AccountID, error) {
	addr, err := tongo.ParseAddress(s)
	if err != nil {
		return ton.AccountID{}, fmt.Errorf("parse address %q: %w", s, err)
	}
	return addr.ID, nil
}

// StateInitAddress derives the deployment address of a code-less StateInit carrying data.
// split_depth, special, code and library are all absent.
func StateInitAddress(workchain int32, data *boc.Cell) (ton.AccountID, error) {
	stateInit := boc.NewCell()
	for _, present := range []bool{false, false, false} {
		if err := stateInit.WriteBit(present); err != nil {
			return ton.AccountID{}, err
		}
	}
	if err := stateInit.WriteBit(true); err != nil {
		return ton.AccountID{}, err
	}
	if err := stateInit.AddRef(data); err != nil {
		return ton.AccountID{}, err
	}
	if err := stateInit.WriteBit(false); err != nil {
		return ton.AccountID{}, err
	}

	hash, err := stateInit.Hash()
	if err != nil {
		return ton.AccountID{}, err
	}

	id := ton.AccountID{Workchain: workchain}
	copy(id.Address[:], hash)
	return id, nil
}
