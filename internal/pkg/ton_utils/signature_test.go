package ton_utils

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"
)

func testKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return ed25519.NewKeyFromSeed(seed)
}

func TestSplitSignedCellVerifies(t *testing.T) {
	key := testKey(t)

	body := boc.NewCell()
	require.NoError(t, body.WriteUint(0x7369676e, 32))
	require.NoError(t, body.WriteUint(42, 32))
	ref := boc.NewCell()
	require.NoError(t, ref.WriteUint(7, 8))
	require.NoError(t, body.AddRef(ref))

	require.NoError(t, AppendSignature(key, body))

	hash, signature, err := SplitSignedCell(body)
	require.NoError(t, err)
	assert.True(t, SignatureVerify(key.Public().(ed25519.PublicKey), hash[:], signature[:]))

	// cursor is left at the start
	op, err := body.ReadUint(32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7369676e), op)
}

func TestSplitSignedCellTamperedRefFails(t *testing.T) {
	key := testKey(t)

	body := boc.NewCell()
	require.NoError(t, body.WriteUint(1, 32))
	ref := boc.NewCell()
	require.NoError(t, ref.WriteUint(7, 8))
	require.NoError(t, body.AddRef(ref))
	require.NoError(t, AppendSignature(key, body))

	hash, signature, err := SplitSignedCell(body)
	require.NoError(t, err)

	forged := boc.NewCell()
	require.NoError(t, forged.WriteUint(1, 32))
	other := boc.NewCell()
	require.NoError(t, other.WriteUint(8, 8))
	require.NoError(t, forged.AddRef(other))
	require.NoError(t, forged.WriteBytes(signature[:]))

	forgedHash, _, err := SplitSignedCell(forged)
	require.NoError(t, err)
	assert.NotEqual(t, hash, forgedHash)
	assert.False(t, SignatureVerify(key.Public().(ed25519.PublicKey), forgedHash[:], signature[:]))
}

func TestSplitSignedCellTooShort(t *testing.T) {
	body := boc.NewCell()
	require.NoError(t, body.WriteUint(1, 32))

	_, _, err := SplitSignedCell(body)
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestBuildInternalMessageDestination(t *testing.T) {
	dest := ton.MustParseAccountID("0:8a1e9e5d35d5ec1d3f0d9c5d8a1e9e5d35d5ec1d3f0d9c5d8a1e9e5d35d5ec1d")

	msg, err := BuildInternalMessage(dest, tlb.Grams(1_000_000), true, nil)
	require.NoError(t, err)

	got, err := MessageDestination(msg)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, dest, *got)
}

func TestStateInitAddressDependsOnData(t *testing.T) {
	a := boc.NewCell()
	require.NoError(t, a.WriteUint(1, 8))
	b := boc.NewCell()
	require.NoError(t, b.WriteUint(2, 8))

	addrA, err := StateInitAddress(0, a)
	require.NoError(t, err)
	addrB, err := StateInitAddress(0, b)
	require.NoError(t, err)
	addrA2, err := StateInitAddress(0, a)
	require.NoError(t, err)

	assert.NotEqual(t, addrA, addrB)
	assert.Equal(t, addrA, addrA2)
	assert.Equal(t, int32(0), addrA.Workchain)
}
