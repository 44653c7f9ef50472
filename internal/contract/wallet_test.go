package contract

import (
	"context"
	"crypto/ed25519"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo/ton"

	"walletv5/internal/pkg/ton_utils"
)

func TestDeployInitialSeqno(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Seqno = 12345 })
	assert.Equal(t, uint32(12345), f.wallet.GetSeqno())
}

func TestDeployDefaultWalletID(t *testing.T) {
	f := newFixture(t, nil)

	identity := ton_utils.WalletID{
		NetworkGlobalID: -239,
		Context:         ton_utils.WalletIDContext{Workchain: 0, WalletVersion: ton_utils.WalletVersionV5R1, SubwalletNumber: 0},
	}
	want, err := ton_utils.PackWalletID(identity)
	require.NoError(t, err)

	assert.Equal(t, want, f.wallet.GetWalletID())
	assert.Equal(t, identity, f.wallet.GetWalletIDParsed())
}

func TestDeployPublicKeyGetter(t *testing.T) {
	f := newFixture(t, nil)
	pub := f.key.Public().(ed25519.PublicKey)
	assert.Equal(t, new(big.Int).SetBytes(pub), f.wallet.GetPublicKey())
}

func TestExtensionsArrayAscending(t *testing.T) {
	k1, k2, k3 := accountWithKey(0, 1), accountWithKey(0, 2), accountWithKey(0, 3)
	f := newFixture(t, func(cfg *Config) { cfg.Extensions = []ton.AccountID{k2, k3, k1} })

	assert.Equal(t, []ton.AccountID{k1, k2, k3}, f.wallet.GetExtensionsArray())
}

func TestExtensionsArrayEmpty(t *testing.T) {
	f := newFixture(t, nil)

	addrs := f.wallet.GetExtensionsArray()
	assert.NotNil(t, addrs)
	assert.Empty(t, addrs)

	raw, err := f.wallet.GetExtensions()
	require.NoError(t, err)
	assert.Equal(t, 1, raw.BitSize())
}

func TestDeployRejectsForeignWorkchainExtension(t *testing.T) {
	key := testKey(1)
	cfg := DefaultConfig(key.Public().(ed25519.PublicKey), ton_utils.MainnetGlobalID)
	cfg.Extensions = []ton.AccountID{accountWithKey(-1, 1)}

	_, err := Deploy(cfg)
	assert.ErrorIs(t, err, ErrExtensionWorkchain)
}

func TestOwnerRequestsAdvanceSeqno(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Seqno = 10 })
	ctx := context.Background()

	for i := uint32(0); i < 5; i++ {
		res, err := f.wallet.HandleExternal(ctx, f.signed(t, 10+i))
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.Equal(t, OriginExternal, res.Origin)
	}
	assert.Equal(t, uint32(15), f.wallet.GetSeqno())
}

func TestReplayIsRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	body := f.signed(t, 0, AddExtension{Address: accountWithKey(0, 1)})
	_, err := f.wallet.HandleExternal(ctx, body)
	require.NoError(t, err)

	_, err = f.wallet.HandleExternal(ctx, body)
	assert.ErrorIs(t, err, ErrReplayOrStale)
	assert.Equal(t, uint32(1), f.wallet.GetSeqno())
	assert.Len(t, f.wallet.GetExtensionsArray(), 1)
}

func TestBatchRollbackOnUnknownRemove(t *testing.T) {
	existing := accountWithKey(0, 9)
	f := newFixture(t, func(cfg *Config) { cfg.Extensions = []ton.AccountID{existing} })

	body := f.signed(t, 0,
		AddExtension{Address: accountWithKey(0, 1)},
		RemoveExtension{Address: accountWithKey(0, 2)},
	)
	_, err := f.wallet.HandleExternal(context.Background(), body)

	assert.ErrorIs(t, err, ErrUnknownExtension)
	assert.Equal(t, uint32(0), f.wallet.GetSeqno())
	assert.Equal(t, []ton.AccountID{existing}, f.wallet.GetExtensionsArray())
}

func TestBatchRollbackKeepsMessagesUnsent(t *testing.T) {
	f := newFixture(t, nil)
	dest := accountWithKey(0, 5)

	body := f.signed(t, 0,
		transferTo(t, dest, SendModeIgnoreErrors),
		RemoveExtension{Address: accountWithKey(0, 2)},
	)
	_, err := f.wallet.HandleExternal(context.Background(), body)

	assert.ErrorIs(t, err, ErrUnknownExtension)
	assert.Empty(t, f.outbox.batches)
}

func TestOutboxFailureAbortsBatch(t *testing.T) {
	f := newFixture(t, nil)
	f.outbox.failWith = errOutboxDown

	body := f.signed(t, 0,
		AddExtension{Address: accountWithKey(0, 1)},
		transferTo(t, accountWithKey(0, 5), SendModeIgnoreErrors),
	)
	_, err := f.wallet.HandleExternal(context.Background(), body)

	assert.ErrorIs(t, err, errOutboxDown)
	assert.Equal(t, uint32(0), f.wallet.GetSeqno())
	assert.Empty(t, f.wallet.GetExtensionsArray())
}

func TestOwnerSendMessage(t *testing.T) {
	f := newFixture(t, nil)
	dest := accountWithKey(0, 5)

	res, err := f.wallet.HandleExternal(context.Background(), f.signed(t, 0,
		transferTo(t, dest, SendModeIgnoreErrors|SendModePayFeesSeparately),
		transferTo(t, accountWithKey(0, 6), SendModeIgnoreErrors),
	))
	require.NoError(t, err)

	require.Len(t, res.OutMessages, 2)
	require.NotNil(t, res.OutMessages[0].Destination)
	assert.Equal(t, dest, *res.OutMessages[0].Destination)
	assert.Equal(t, uint8(3), res.OutMessages[0].Mode)
	require.Len(t, f.outbox.batches, 1)
	assert.Len(t, f.outbox.batches[0], 2)
}

func TestExternalSendNeedsIgnoreErrors(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wallet.HandleExternal(context.Background(), f.signed(t, 0, transferTo(t, accountWithKey(0, 5), SendModePayFeesSeparately)))
	assert.ErrorIs(t, err, ErrExternalSendMode)
	assert.Equal(t, uint32(0), f.wallet.GetSeqno())
}

func TestSignedInternalAllowsAnySendMode(t *testing.T) {
	f := newFixture(t, nil)

	body, err := BuildSignedRequest(OpSignedInternal, f.wallet.GetWalletID(), uint32(testNow.Add(time.Minute).Unix()), 0,
		[]Action{transferTo(t, accountWithKey(0, 5), SendModePayFeesSeparately)}, f.key)
	require.NoError(t, err)

	res, err := f.wallet.HandleInternal(context.Background(), InternalMessage{Sender: accountWithKey(0, 77), Body: body})
	require.NoError(t, err)
	assert.Equal(t, OriginSignedInternal, res.Origin)
	assert.Equal(t, uint32(1), f.wallet.GetSeqno())
}

func TestSignatureDisabledRejectsOwner(t *testing.T) {
	ext := accountWithKey(0, 1)
	f := newFixture(t, func(cfg *Config) { cfg.Extensions = []ton.AccountID{ext} })
	ctx := context.Background()

	_, err := f.wallet.HandleExternal(ctx, f.signed(t, 0, SetSignatureAuthEnabled{Enabled: false}))
	require.NoError(t, err)

	_, err = f.wallet.HandleExternal(ctx, f.signed(t, 1))
	assert.ErrorIs(t, err, ErrSignatureAuthDisabled)
	assert.Equal(t, uint32(1), f.wallet.GetSeqno())

	// only an extension can turn it back on
	_, err = f.wallet.HandleInternal(ctx, InternalMessage{Sender: ext, Body: f.extension(t, SetSignatureAuthEnabled{Enabled: true})})
	require.NoError(t, err)

	_, err = f.wallet.HandleExternal(ctx, f.signed(t, 1))
	assert.NoError(t, err)
}

func TestDelegateNotAuthorized(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Extensions = []ton.AccountID{accountWithKey(0, 1)} })

	_, err := f.wallet.HandleInternal(context.Background(), InternalMessage{
		Sender: accountWithKey(0, 2),
		Body:   f.extension(t, AddExtension{Address: accountWithKey(0, 3)}),
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Len(t, f.wallet.GetExtensionsArray(), 1)
}

func TestDelegateSameHashOtherWorkchainNotAuthorized(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.Extensions = []ton.AccountID{accountWithKey(0, 1)} })

	_, err := f.wallet.HandleInternal(context.Background(), InternalMessage{
		Sender: accountWithKey(-1, 1),
		Body:   f.extension(t),
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDelegateActsWithoutSignature(t *testing.T) {
	ext := accountWithKey(0, 1)
	f := newFixture(t, func(cfg *Config) {
		cfg.Seqno = 3
		cfg.Extensions = []ton.AccountID{ext}
	})

	res, err := f.wallet.HandleInternal(context.Background(), InternalMessage{
		Sender: ext,
		Body: f.extension(t,
			AddExtension{Address: accountWithKey(0, 2)},
			RemoveExtension{Address: ext},
			transferTo(t, accountWithKey(0, 5), SendModePayFeesSeparately),
		),
	})
	require.NoError(t, err)

	assert.Equal(t, OriginExtension, res.Origin)
	assert.Equal(t, uint64(1), res.QueryID)
	assert.Equal(t, uint32(3), f.wallet.GetSeqno())
	assert.Equal(t, []ton.AccountID{accountWithKey(0, 2)}, f.wallet.GetExtensionsArray())
	assert.Len(t, res.OutMessages, 1)
}

func TestDelegateDuplicateAddRollsBack(t *testing.T) {
	ext := accountWithKey(0, 1)
	f := newFixture(t, func(cfg *Config) { cfg.Extensions = []ton.AccountID{ext} })

	_, err := f.wallet.HandleInternal(context.Background(), InternalMessage{
		Sender: ext,
		Body: f.extension(t,
			AddExtension{Address: accountWithKey(0, 2)},
			AddExtension{Address: accountWithKey(0, 2)},
		),
	})
	assert.ErrorIs(t, err, ErrDuplicateExtension)
	assert.Equal(t, []ton.AccountID{ext}, f.wallet.GetExtensionsArray())
}

func TestInternalTransfersAreNoops(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []InternalMessage{
		{Sender: accountWithKey(0, 2)},
		{Sender: accountWithKey(0, 2), Bounced: true, Body: f.extension(t)},
		{Sender: accountWithKey(0, 2), Body: f.signed(t, 0)}, // "sign" op is not an internal op
	}
	for _, msg := range cases {
		res, err := f.wallet.HandleInternal(ctx, msg)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
	}
	assert.Equal(t, uint32(0), f.wallet.GetSeqno())
}

func TestAddExtensionWrongWorkchain(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wallet.HandleExternal(context.Background(), f.signed(t, 0, AddExtension{Address: accountWithKey(-1, 1)}))
	assert.ErrorIs(t, err, ErrExtensionWorkchain)
}

func TestExternalNilBodyRejected(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wallet.HandleExternal(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.Equal(t, uint32(0), f.wallet.GetSeqno())
}

func TestResultStateIsDetached(t *testing.T) {
	ext := accountWithKey(0, 1)
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.wallet.HandleExternal(ctx, f.signed(t, 0))
	require.NoError(t, err)
	require.NoError(t, res.State.Extensions.Insert(ext.Address))
	res.State.Seqno = 99
	assert.Empty(t, f.wallet.GetExtensionsArray())
	assert.Equal(t, uint32(1), f.wallet.GetSeqno())

	res, err = f.wallet.HandleInternal(ctx, InternalMessage{Sender: ext})
	require.NoError(t, err)
	res.State.SignatureAllowed = false
	require.NoError(t, res.State.Extensions.Insert(ext.Address))
	assert.True(t, f.wallet.State().SignatureAllowed)
	assert.Empty(t, f.wallet.GetExtensionsArray())
}

func TestStateCellRoundTrip(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.Seqno = 77
		cfg.Identity.Context.SubwalletNumber = 12
		cfg.Extensions = []ton.AccountID{accountWithKey(0, 4), accountWithKey(0, 1)}
	})
	state := f.wallet.State()

	c, err := state.ToCell()
	require.NoError(t, err)

	loaded, err := LoadAccountState(c, ton_utils.MainnetGlobalID)
	require.NoError(t, err)
	assert.Equal(t, state.Seqno, loaded.Seqno)
	assert.Equal(t, state.PublicKey, loaded.PublicKey)
	assert.Equal(t, state.Identity, loaded.Identity)
	assert.Equal(t, state.SignatureAllowed, loaded.SignatureAllowed)
	assert.Equal(t, state.Extensions.Enumerate(), loaded.Extensions.Enumerate())
}

func TestDeployAddressDependsOnSubwallet(t *testing.T) {
	a := newFixture(t, nil)
	b := newFixture(t, func(cfg *Config) { cfg.Identity.Context.SubwalletNumber = 1 })

	assert.NotEqual(t, a.wallet.Address(), b.wallet.Address())
}

func TestReadersNeverSeePartialBatch(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			state := f.wallet.State()
			// every committed batch below adds exactly one extension per seqno step
			assert.Equal(t, int(state.Seqno), state.Extensions.Len())
		}
	}()

	for i := uint32(0); i < 20; i++ {
		_, err := f.wallet.HandleExternal(ctx, f.signed(t, i, AddExtension{Address: accountWithKey(0, byte(i+1))}))
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
}
