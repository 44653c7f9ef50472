package contract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/ton"
)

// Outbox receives the outbound messages of a committed batch. An error aborts the
// batch; delivery itself is not awaited.
type Outbox interface {
	Enqueue(ctx context.Context, from ton.AccountID, messages []SendMessage) error
}

type InternalMessage struct {
	Sender  ton.AccountID
	Bounced bool
	Body    *boc.Cell
}

type Result struct {
	// Accepted is false for plain incoming transfers that touch no state.
	Accepted    bool
	Origin      Origin
	QueryID     uint64
	Actions     []Action
	OutMessages []SendMessage
	State       *AccountState
}

// Wallet runs one request at a time against its state. Readers always see the last
// committed state, never a batch in progress.
type Wallet struct {
	mu      sync.RWMutex
	address ton.AccountID
	state   *AccountState
	outbox  Outbox
	now     func() time.Time
}

type Option func(*Wallet)

func WithClock(now func() time.Time) Option {
	return func(w *Wallet) {
		w.now = now
	}
}

func WithOutbox(outbox Outbox) Option {
	return func(w *Wallet) {
		w.outbox = outbox
	}
}

type discardOutbox struct{}

func (discardOutbox) Enqueue(context.Context, ton.AccountID, []SendMessage) error {
	return nil
}

// Deploy creates a wallet from a deployment config; its address is derived from the
// initial state.
func Deploy(cfg Config, opts ...Option) (*Wallet, error) {
	state, err := NewAccountState(cfg)
	if err != nil {
		return nil, err
	}
	address, err := state.Address()
	if err != nil {
		return nil, err
	}
	return Restore(address, state, opts...), nil
}

// Restore wraps an already deployed state.
func Restore(address ton.AccountID, state *AccountState, opts ...Option) *Wallet {
	w := &Wallet{
		address: address,
		state:   state,
		outbox:  discardOutbox{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wallet) Address() ton.AccountID {
	return w.address
}

// State returns a copy of the committed state.
func (w *Wallet) State() *AccountState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Clone()
}

// HandleExternal processes an external-in message body, which must be a signed request.
func (w *Wallet) HandleExternal(ctx context.Context, body *boc.Cell) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if body == nil {
		return nil, fmt.Errorf("%w: empty external body", ErrInvalidMessage)
	}
	body.ResetCounters()
	req, err := ParseSignedRequest(body, OpSignedExternal)
	if err != nil {
		return nil, err
	}
	return w.handleSigned(ctx, req, OriginExternal)
}

// HandleInternal processes an internal message. Bounced messages, short bodies and
// unknown ops are plain transfers.
func (w *Wallet) HandleInternal(ctx context.Context, msg InternalMessage) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	transfer := &Result{State: w.state.Clone()}
	if msg.Bounced || msg.Body == nil {
		return transfer, nil
	}

	body := msg.Body
	body.ResetCounters()
	if body.BitsAvailableForRead() < 32 {
		return transfer, nil
	}
	op, err := body.ReadUint(32)
	if err != nil {
		return nil, err
	}

	switch uint32(op) {
	case OpExtensionAction:
		return w.handleExtension(ctx, msg.Sender, body)
	case OpSignedInternal:
		req, err := ParseSignedRequest(body, OpSignedInternal)
		if err != nil {
			return nil, err
		}
		return w.handleSigned(ctx, req, OriginSignedInternal)
	default:
		return transfer, nil
	}
}

func (w *Wallet) handleSigned(ctx context.Context, req *SignedRequest, origin Origin) (*Result, error) {
	if err := Authenticate(w.state, req, w.now()); err != nil {
		return nil, err
	}

	actions, err := DecodeInnerRequest(req.Inner)
	if err != nil {
		return nil, err
	}

	next, out, err := Execute(w.state, actions, origin)
	if err != nil {
		return nil, err
	}
	next.Seqno++

	return w.commit(ctx, &Result{Accepted: true, Origin: origin, Actions: actions}, next, out)
}

func (w *Wallet) handleExtension(ctx context.Context, sender ton.AccountID, body *boc.Cell) (*Result, error) {
	if !w.state.isExtension(sender) {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, sender.ToRaw())
	}

	queryID, err := body.ReadUint(64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	actions, err := DecodeInnerRequest(body)
	if err != nil {
		return nil, err
	}

	next, out, err := Execute(w.state, actions, OriginExtension)
	if err != nil {
		return nil, err
	}

	return w.commit(ctx, &Result{Accepted: true, Origin: OriginExtension, QueryID: queryID, Actions: actions}, next, out)
}

// commit hands the outbound messages over first so that an enqueue failure leaves the
// committed state as it was.
func (w *Wallet) commit(ctx context.Context, result *Result, next *AccountState, out []SendMessage) (*Result, error) {
	if len(out) > 0 {
		if err := w.outbox.Enqueue(ctx, w.address, out); err != nil {
			return nil, fmt.Errorf("enqueue outbound messages: %w", err)
		}
	}
	w.state = next
	result.OutMessages = out
	result.State = next.Clone()
	return result, nil
}
