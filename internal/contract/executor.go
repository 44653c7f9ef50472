package contract

import (
	"fmt"
)

// Origin tells the executor which path authenticated the batch.
type Origin int

const (
	OriginExternal Origin = iota
	OriginSignedInternal
	OriginExtension
)

func (o Origin) String() string {
	switch o {
	case OriginExternal:
		return "external"
	case OriginSignedInternal:
		return "signed_internal"
	case OriginExtension:
		return "extension"
	}
	return "unknown"
}

// Execute applies actions in order to a copy of state. On success it returns the new
// state and the messages to hand to the outbox; on failure state is untouched and the
// whole batch is dropped.
func Execute(state *AccountState, actions []Action, origin Origin) (*AccountState, []SendMessage, error) {
	next := state.Clone()
	var out []SendMessage

	for i, action := range actions {
		if err := apply(next, action, origin, &out); err != nil {
			return nil, nil, fmt.Errorf("action %d (%s): %w", i, action.Kind(), err)
		}
	}
	return next, out, nil
}

func apply(state *AccountState, action Action, origin Origin, out *[]SendMessage) error {
	switch a := action.(type) {
	case SendMessage:
		if origin == OriginExternal && a.Mode&SendModeIgnoreErrors == 0 {
			return fmt.Errorf("%w: mode %d", ErrExternalSendMode, a.Mode)
		}
		if a.Message == nil {
			return fmt.Errorf("%w: send action without message", ErrInvalidActions)
		}
		*out = append(*out, a)
	case AddExtension:
		if a.Address.Workchain != state.Workchain() {
			return fmt.Errorf("%w: %s", ErrExtensionWorkchain, a.Address.ToRaw())
		}
		return state.Extensions.Insert(a.Address.Address)
	case RemoveExtension:
		if a.Address.Workchain != state.Workchain() {
			return fmt.Errorf("%w: %s", ErrExtensionWorkchain, a.Address.ToRaw())
		}
		return state.Extensions.Remove(a.Address.Address)
	case SetSignatureAuthEnabled:
		state.SignatureAllowed = a.Enabled
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, action.Kind())
	}
	return nil
}
