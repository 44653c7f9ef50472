package services

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"walletv5/internal/contract"
	"walletv5/internal/models"
	"walletv5/internal/pkg/ton_utils"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/ton"
)

var ErrWalletNotFound = errors.New("wallet not found")

func walletAccountFromState(address ton.AccountID, networkGlobalID int32, state *contract.AccountState) (*models.WalletAccount, error) {
	c, err := state.ToCell()
	if err != nil {
		return nil, err
	}
	raw, err := c.ToBoc()
	if err != nil {
		return nil, err
	}
	hash, err := c.Hash()
	if err != nil {
		return nil, err
	}

	extensions := []string{}
	for _, ext := range state.GetExtensionsArray() {
		extensions = append(extensions, ext.ToRaw())
	}

	return &models.WalletAccount{
		Address:          address.ToRaw(),
		Workchain:        address.Workchain,
		NetworkGlobalID:  networkGlobalID,
		WalletID:         state.GetWalletID(),
		Seqno:            int64(state.GetSeqno()),
		PublicKey:        hex.EncodeToString(state.PublicKey[:]),
		SignatureAllowed: state.SignatureAllowed,
		Extensions:       extensions,
		StateBoc:         raw,
		StateHash:        hex.EncodeToString(hash),
	}, nil
}

func snapshotFromAccount(account *models.WalletAccount) *models.WalletSnapshot {
	return &models.WalletSnapshot{
		Address:         account.Address,
		NetworkGlobalID: account.NetworkGlobalID,
		StateBoc:        account.StateBoc,
		StateHash:       account.StateHash,
	}
}

func stateFromSnapshot(snapshot *models.WalletSnapshot) (ton.AccountID, *contract.AccountState, error) {
	address, err := ton_utils.ParseAccountID(snapshot.Address)
	if err != nil {
		return ton.AccountID{}, nil, err
	}
	cells, err := boc.DeserializeBoc(snapshot.StateBoc)
	if err != nil {
		return ton.AccountID{}, nil, err
	}
	if len(cells) < 1 {
		return ton.AccountID{}, nil, ton_utils.ErrEmptyBoc
	}
	state, err := contract.LoadAccountState(cells[0], snapshot.NetworkGlobalID)
	if err != nil {
		return ton.AccountID{}, nil, err
	}
	return address, state, nil
}

// outboxCollector holds a batch's messages until the service commits them with the
// new state.
type outboxCollector struct {
	now     func() time.Time
	pending []*models.OutMessage
}

func (o *outboxCollector) Enqueue(_ context.Context, from ton.AccountID, messages []contract.SendMessage) error {
	for _, m := range messages {
		raw, err := m.Message.ToBoc()
		if err != nil {
			return err
		}

		out := &models.OutMessage{
			ID:            uuid.New().String(),
			WalletAddress: from.ToRaw(),
			Mode:          int16(m.Mode),
			Boc:           base64.StdEncoding.EncodeToString(raw),
			Status:        models.OUT_MESSAGE_STATUS_QUEUED,
			CreatedAt:     o.now(),
		}
		if m.Destination != nil {
			dest := m.Destination.ToRaw()
			out.Destination = &dest
		}
		o.pending = append(o.pending, out)
	}
	return nil
}

func (o *outboxCollector) messages(origin contract.Origin) []*models.OutMessage {
	for _, m := range o.pending {
		m.Origin = origin.String()
	}
	return o.pending
}

// wrapContractError classifies contract rejections for the http layer. Errors with a
// contract exit code carry it in the message.
func wrapContractError(err error) error {
	code := contract.ExitCode(err)
	if code >= 0 {
		err = fmt.Errorf("exit code %d: %w", code, err)
	}

	switch {
	case contract.IsAuthError(err):
		return errorx.Wrap(err, errorx.Authn)
	case code >= 0:
		return errorx.Wrap(err, errorx.Invalid)
	}
	return errorx.Wrap(err, errorx.Service)
}

func actionKinds(actions []contract.Action) []string {
	kinds := make([]string, 0, len(actions))
	for _, a := range actions {
		kinds = append(kinds, a.Kind())
	}
	return kinds
}
