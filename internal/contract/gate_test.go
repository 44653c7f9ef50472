package contract

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletv5/internal/pkg/ton_utils"
)

func gateFixture(t *testing.T) (*AccountState, ed25519.PrivateKey) {
	t.Helper()
	key := testKey(3)
	state, err := NewAccountState(DefaultConfig(key.Public().(ed25519.PublicKey), ton_utils.MainnetGlobalID))
	require.NoError(t, err)
	state.Seqno = 5
	return state, key
}

func signedRequest(t *testing.T, key ed25519.PrivateKey, walletID int32, validUntil time.Time, seqno uint32) *SignedRequest {
	t.Helper()
	body, err := BuildSignedRequest(OpSignedExternal, walletID, uint32(validUntil.Unix()), seqno, nil, key)
	require.NoError(t, err)
	req, err := ParseSignedRequest(body, OpSignedExternal)
	require.NoError(t, err)
	return req
}

func TestAuthenticateAccepts(t *testing.T) {
	state, key := gateFixture(t)
	req := signedRequest(t, key, state.GetWalletID(), testNow.Add(time.Minute), 5)

	assert.NoError(t, Authenticate(state, req, testNow))
	assert.Equal(t, uint32(5), state.Seqno)
}

func TestAuthenticateOrder(t *testing.T) {
	state, key := gateFixture(t)
	other := testKey(4)
	future := testNow.Add(time.Minute)

	cases := []struct {
		name  string
		setup func() (*AccountState, *SignedRequest)
		want  error
	}{
		{
			"disabled wins over everything",
			func() (*AccountState, *SignedRequest) {
				s := state.Clone()
				s.SignatureAllowed = false
				return s, signedRequest(t, other, 1, testNow.Add(-time.Hour), 99)
			},
			ErrSignatureAuthDisabled,
		},
		{
			"identity before seqno",
			func() (*AccountState, *SignedRequest) {
				return state, signedRequest(t, key, state.GetWalletID()+1, future, 99)
			},
			ErrIdentityMismatch,
		},
		{
			"seqno before expiry",
			func() (*AccountState, *SignedRequest) {
				return state, signedRequest(t, key, state.GetWalletID(), testNow.Add(-time.Hour), 4)
			},
			ErrReplayOrStale,
		},
		{
			"seqno ahead is rejected too",
			func() (*AccountState, *SignedRequest) {
				return state, signedRequest(t, key, state.GetWalletID(), future, 6)
			},
			ErrReplayOrStale,
		},
		{
			"expiry before signature",
			func() (*AccountState, *SignedRequest) {
				return state, signedRequest(t, other, state.GetWalletID(), testNow, 5)
			},
			ErrExpired,
		},
		{
			"signature",
			func() (*AccountState, *SignedRequest) {
				return state, signedRequest(t, other, state.GetWalletID(), future, 5)
			},
			ErrBadSignature,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, req := tc.setup()
			err := Authenticate(s, req, testNow)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsAuthError(err))
		})
	}
}

func TestAuthenticateSeqnoExhausted(t *testing.T) {
	state, key := gateFixture(t)
	state.Seqno = ^uint32(0)
	req := signedRequest(t, key, state.GetWalletID(), testNow.Add(time.Minute), state.Seqno)

	assert.ErrorIs(t, Authenticate(state, req, testNow), ErrReplayOrStale)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 133, ExitCode(ErrReplayOrStale))
	assert.Equal(t, 139, ExitCode(ErrDuplicateExtension))
	assert.Equal(t, -1, ExitCode(ErrNotAuthorized))
}
