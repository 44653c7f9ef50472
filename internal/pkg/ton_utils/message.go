package ton_utils

import (
	"errors"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"
)

var ErrNotInternalMessage = errors.New("not an internal message")

// BuildInternalMessage serializes a relaxed internal message with an addr_none source,
// zero fees and the body stored in a ref.
func BuildInternalMessage(destination ton.AccountID, amount tlb.Grams, bounce bool, body *boc.Cell) (*boc.Cell, error) {
	if body == nil {
		body = boc.NewCell()
	}

	c := boc.NewCell()
	// int_msg_info$0 ihr_disabled bounce bounced
	for _, bit := range []bool{false, true, bounce, false} {
		if err := c.WriteBit(bit); err != nil {
			return nil, err
		}
	}
	// addr_none$00 source, filled in by the action phase
	if err := c.WriteUint(0, 2); err != nil {
		return nil, err
	}
	if err := tlb.Marshal(c, destination.ToMsgAddress()); err != nil {
		return nil, err
	}
	if err := tlb.Marshal(c, amount); err != nil {
		return nil, err
	}
	// empty extra currencies
	if err := c.WriteBit(false); err != nil {
		return nil, err
	}
	// ihr_fee, fwd_fee
	for i := 0; i < 2; i++ {
		if err := tlb.Marshal(c, tlb.Grams(0)); err != nil {
			return nil, err
		}
	}
	if err := c.WriteUint(0, 64); err != nil {
		return nil, err
	}
	if err := c.WriteUint(0, 32); err != nil {
		return nil, err
	}
	// no state init, body in ref
	if err := c.WriteBit(false); err != nil {
		return nil, err
	}
	if err := c.WriteBit(true); err != nil {
		return nil, err
	}
	if err := c.AddRef(body); err != nil {
		return nil, err
	}
	return c, nil
}

// MessageDestination reads the destination of a relaxed internal message. External
// outbound messages yield ErrNotInternalMessage.
func MessageDestination(msg *boc.Cell) (*ton.AccountID, error) {
	msg.ResetCounters()
	defer msg.ResetCounters()

	external, err := msg.ReadBit()
	if err != nil {
		return nil, err
	}
	if external {
		return nil, ErrNotInternalMessage
	}
	// ihr_disabled bounce bounced
	if _, err := msg.ReadUint(3); err != nil {
		return nil, err
	}

	var src, dest tlb.MsgAddress
	if err := tlb.Unmarshal(msg, &src); err != nil {
		return nil, err
	}
	if err := tlb.Unmarshal(msg, &dest); err != nil {
		return nil, err
	}
	return ton.AccountIDFromTlb(dest)
}

// BuildExternalMessage wraps body into an ext_in message addressed to destination,
// ready to be broadcast.
func BuildExternalMessage(destination ton.AccountID, body *boc.Cell) (*boc.Cell, error) {
	c := boc.NewCell()
	// ext_in_msg_info$10 src:addr_none
	if err := c.WriteUint(0b10, 2); err != nil {
		return nil, err
	}
	if err := c.WriteUint(0, 2); err != nil {
		return nil, err
	}
	if err := tlb.Marshal(c, destination.ToMsgAddress()); err != nil {
		return nil, err
	}
	// import_fee
	if err := tlb.Marshal(c, tlb.Grams(0)); err != nil {
		return nil, err
	}
	if err := c.WriteBit(false); err != nil {
		return nil, err
	}
	if err := c.WriteBit(true); err != nil {
		return nil, err
	}
	if err := c.AddRef(body); err != nil {
		return nil, err
	}
	return c, nil
}
