package contract

import (
	"fmt"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"

	"walletv5/internal/pkg/ton_utils"
)

const (
	opActionSendMsg        = 0x0ec3c86d
	opAddExtension         = 0x02
	opRemoveExtension      = 0x03
	opSetSignatureAuthMode = 0x04

	maxOutActions = 255

	SendModePayFeesSeparately = 1
	SendModeIgnoreErrors      = 2
)

// Action is one primitive operation of a request batch.
type Action interface {
	Kind() string
}

type SendMessage struct {
	Mode    uint8
	Message *boc.Cell
	// Destination is nil for external outbound messages or headers that fail to parse.
	Destination *ton.AccountID
}

type AddExtension struct {
	Address ton.AccountID
}

type RemoveExtension struct {
	Address ton.AccountID
}

type SetSignatureAuthEnabled struct {
	Enabled bool
}

func (SendMessage) Kind() string             { return "send_message" }
func (AddExtension) Kind() string            { return "add_extension" }
func (RemoveExtension) Kind() string         { return "remove_extension" }
func (SetSignatureAuthEnabled) Kind() string { return "set_signature_auth_enabled" }

// DecodeInnerRequest reads
// out_actions:(Maybe ^OutList) has_other_actions:(## 1) other_actions:ExtendedActionList
// starting at the current cursor of c. Send actions come first, in execution order,
// followed by the extended actions in chain order.
func DecodeInnerRequest(c *boc.Cell) ([]Action, error) {
	var actions []Action

	hasOut, err := c.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
	}
	if hasOut {
		list, err := c.NextRef()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
		}
		list.ResetCounters()
		sends, err := decodeOutList(list)
		if err != nil {
			return nil, err
		}
		actions = append(actions, sends...)
	}

	hasOther, err := c.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
	}
	if !hasOther {
		return actions, nil
	}

	cur := c
	for {
		action, err := decodeExtendedAction(cur)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)

		if cur.RefsAvailableForRead() == 0 {
			return actions, nil
		}
		cur, err = cur.NextRef()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedAction, err)
		}
		cur.ResetCounters()
	}
}

// decodeOutList walks out_list$_ prev:^OutList action:OutAction from the newest entry
// to the empty tail, then reverses into execution order.
func decodeOutList(c *boc.Cell) ([]Action, error) {
	var reversed []Action
	cur := c
	for cur.RefsAvailableForRead() > 0 {
		if len(reversed) == maxOutActions {
			return nil, fmt.Errorf("%w: more than %d actions", ErrInvalidActions, maxOutActions)
		}

		prev, err := cur.NextRef()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
		}
		op, err := cur.ReadUint(32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
		}
		if op != opActionSendMsg {
			return nil, fmt.Errorf("%w: out action 0x%08x", ErrInvalidActions, op)
		}
		if cur.BitsAvailableForRead() != 8 || cur.RefsAvailableForRead() != 1 {
			return nil, fmt.Errorf("%w: malformed send action", ErrInvalidActions)
		}
		mode, err := cur.ReadUint(8)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
		}
		msg, err := cur.NextRef()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidActions, err)
		}
		msg.ResetCounters()
		prev.ResetCounters()

		send := SendMessage{Mode: uint8(mode), Message: msg}
		if dest, err := ton_utils.MessageDestination(msg); err == nil {
			send.Destination = dest
		}
		reversed = append(reversed, send)
		cur = prev
	}
	if cur.BitsAvailableForRead() != 0 {
		return nil, fmt.Errorf("%w: non-empty list tail", ErrInvalidActions)
	}

	actions := make([]Action, len(reversed))
	for i, a := range reversed {
		actions[len(reversed)-1-i] = a
	}
	return actions, nil
}

func decodeExtendedAction(c *boc.Cell) (Action, error) {
	op, err := c.ReadUint(8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAction, err)
	}

	switch op {
	case opAddExtension, opRemoveExtension:
		addr, err := readStdAddress(c)
		if err != nil {
			return nil, err
		}
		if op == opAddExtension {
			return AddExtension{Address: addr}, nil
		}
		return RemoveExtension{Address: addr}, nil
	case opSetSignatureAuthMode:
		allowed, err := c.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedAction, err)
		}
		return SetSignatureAuthEnabled{Enabled: allowed}, nil
	default:
		return nil, fmt.Errorf("%w: extended op 0x%02x", ErrUnsupportedAction, op)
	}
}

func readStdAddress(c *boc.Cell) (ton.AccountID, error) {
	var addr tlb.MsgAddress
	if err := tlb.Unmarshal(c, &addr); err != nil {
		return ton.AccountID{}, fmt.Errorf("%w: %v", ErrUnsupportedAction, err)
	}
	if addr.SumType != "AddrStd" {
		return ton.AccountID{}, fmt.Errorf("%w: address type %s", ErrUnsupportedAction, addr.SumType)
	}
	id, err := ton.AccountIDFromTlb(addr)
	if err != nil || id == nil {
		return ton.AccountID{}, fmt.Errorf("%w: bad address", ErrUnsupportedAction)
	}
	return *id, nil
}

// EncodeInnerRequest builds the inner request in a cell of its own.
func EncodeInnerRequest(actions []Action) (*boc.Cell, error) {
	c := boc.NewCell()
	if err := writeInnerRequest(c, actions); err != nil {
		return nil, err
	}
	return c, nil
}

func writeInnerRequest(c *boc.Cell, actions []Action) error {
	var sends []SendMessage
	var extended []Action
	for _, a := range actions {
		if send, ok := a.(SendMessage); ok {
			sends = append(sends, send)
			continue
		}
		extended = append(extended, a)
	}

	if len(sends) == 0 {
		if err := c.WriteBit(false); err != nil {
			return err
		}
	} else {
		list, err := encodeOutList(sends)
		if err != nil {
			return err
		}
		if err := c.WriteBit(true); err != nil {
			return err
		}
		if err := c.AddRef(list); err != nil {
			return err
		}
	}

	if len(extended) == 0 {
		return c.WriteBit(false)
	}
	if err := c.WriteBit(true); err != nil {
		return err
	}
	if err := writeExtendedAction(c, extended[0]); err != nil {
		return err
	}
	if len(extended) == 1 {
		return nil
	}
	tail, err := encodeExtendedChain(extended[1:])
	if err != nil {
		return err
	}
	return c.AddRef(tail)
}

func encodeOutList(sends []SendMessage) (*boc.Cell, error) {
	if len(sends) > maxOutActions {
		return nil, fmt.Errorf("%w: more than %d actions", ErrInvalidActions, maxOutActions)
	}
	prev := boc.NewCell()
	for _, send := range sends {
		if send.Message == nil {
			return nil, fmt.Errorf("%w: send action without message", ErrInvalidActions)
		}
		cur := boc.NewCell()
		if err := cur.AddRef(prev); err != nil {
			return nil, err
		}
		if err := cur.WriteUint(opActionSendMsg, 32); err != nil {
			return nil, err
		}
		if err := cur.WriteUint(uint64(send.Mode), 8); err != nil {
			return nil, err
		}
		if err := cur.AddRef(send.Message); err != nil {
			return nil, err
		}
		prev = cur
	}
	return prev, nil
}

func encodeExtendedChain(actions []Action) (*boc.Cell, error) {
	var next *boc.Cell
	for i := len(actions) - 1; i >= 0; i-- {
		cur := boc.NewCell()
		if err := writeExtendedAction(cur, actions[i]); err != nil {
			return nil, err
		}
		if next != nil {
			if err := cur.AddRef(next); err != nil {
				return nil, err
			}
		}
		next = cur
	}
	return next, nil
}

func writeExtendedAction(c *boc.Cell, action Action) error {
	switch a := action.(type) {
	case AddExtension:
		if err := c.WriteUint(opAddExtension, 8); err != nil {
			return err
		}
		return tlb.Marshal(c, a.Address.ToMsgAddress())
	case RemoveExtension:
		if err := c.WriteUint(opRemoveExtension, 8); err != nil {
			return err
		}
		return tlb.Marshal(c, a.Address.ToMsgAddress())
	case SetSignatureAuthEnabled:
		if err := c.WriteUint(opSetSignatureAuthMode, 8); err != nil {
			return err
		}
		return c.WriteBit(a.Enabled)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, action.Kind())
	}
}
