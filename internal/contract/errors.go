package contract

import "errors"

var (
	ErrSignatureAuthDisabled = errors.New("signature auth disabled")
	ErrReplayOrStale         = errors.New("seqno mismatch")
	ErrIdentityMismatch      = errors.New("wallet id mismatch")
	ErrBadSignature          = errors.New("invalid signature")
	ErrExpired               = errors.New("request expired")
	ErrExternalSendMode      = errors.New("external send message must have ignore errors send mode")
	ErrInvalidMessage        = errors.New("invalid message operation")
	ErrDuplicateExtension    = errors.New("extension already registered")
	ErrUnknownExtension      = errors.New("extension not registered")
	ErrUnsupportedAction     = errors.New("unsupported action")
	ErrExtensionWorkchain    = errors.New("extension in wrong workchain")
	ErrInvalidActions        = errors.New("invalid out actions")
	ErrNotAuthorized         = errors.New("sender is not a registered extension")
)

// exit codes of the on-chain v5r1 contract
var exitCodes = map[error]int{
	ErrSignatureAuthDisabled: 132,
	ErrReplayOrStale:         133,
	ErrIdentityMismatch:      134,
	ErrBadSignature:          135,
	ErrExpired:               136,
	ErrExternalSendMode:      137,
	ErrInvalidMessage:        138,
	ErrDuplicateExtension:    139,
	ErrUnknownExtension:      140,
	ErrUnsupportedAction:     141,
	ErrExtensionWorkchain:    145,
	ErrInvalidActions:        147,
}

// ExitCode returns the contract exit code for err, or -1 when it has none. Rejected
// delegate requests have no code since the chain contract ignores them silently.
func ExitCode(err error) int {
	for sentinel, code := range exitCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return -1
}

// IsAuthError reports whether err was raised before any action ran.
func IsAuthError(err error) bool {
	for _, sentinel := range []error{ErrSignatureAuthDisabled, ErrReplayOrStale, ErrIdentityMismatch, ErrBadSignature, ErrExpired, ErrNotAuthorized} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
