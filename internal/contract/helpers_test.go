package contract

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"

	"walletv5/internal/pkg/ton_utils"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func testKey(b byte) ed25519.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return ed25519.NewKeyFromSeed(seed)
}

func accountWithKey(workchain int32, b byte) ton.AccountID {
	id := ton.AccountID{Workchain: workchain}
	id.Address[31] = b
	return id
}

type recordingOutbox struct {
	mu       sync.Mutex
	batches  [][]SendMessage
	failWith error
}

func (o *recordingOutbox) Enqueue(_ context.Context, _ ton.AccountID, messages []SendMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failWith != nil {
		return o.failWith
	}
	o.batches = append(o.batches, messages)
	return nil
}

var errOutboxDown = errors.New("outbox down")

type fixture struct {
	key    ed25519.PrivateKey
	wallet *Wallet
	outbox *recordingOutbox
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	key := testKey(7)
	cfg := DefaultConfig(key.Public().(ed25519.PublicKey), ton_utils.MainnetGlobalID)
	if mutate != nil {
		mutate(&cfg)
	}
	outbox := &recordingOutbox{}
	w, err := Deploy(cfg, WithClock(fixedClock), WithOutbox(outbox))
	require.NoError(t, err)
	return &fixture{key: key, wallet: w, outbox: outbox}
}

func (f *fixture) signed(t *testing.T, seqno uint32, actions ...Action) *boc.Cell {
	t.Helper()
	body, err := BuildSignedRequest(OpSignedExternal, f.wallet.GetWalletID(), uint32(testNow.Add(time.Minute).Unix()), seqno, actions, f.key)
	require.NoError(t, err)
	return body
}

func (f *fixture) extension(t *testing.T, actions ...Action) *boc.Cell {
	t.Helper()
	body, err := BuildExtensionRequest(1, actions)
	require.NoError(t, err)
	return body
}

func transferTo(t *testing.T, dest ton.AccountID, mode uint8) SendMessage {
	t.Helper()
	msg, err := ton_utils.BuildInternalMessage(dest, tlb.Grams(1_000_000_000), false, nil)
	require.NoError(t, err)
	return SendMessage{Mode: mode, Message: msg}
}
