package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo/tlb"
)

func key(b byte) tlb.Bits256 {
	var k tlb.Bits256
	k[0] = b
	k[31] = b
	return k
}

func TestRegistryInsertRemove(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	require.NoError(t, r.Insert(key(2)))
	assert.True(t, r.Contains(key(2)))

	err = r.Insert(key(2))
	assert.ErrorIs(t, err, ErrDuplicateExtension)
	assert.Equal(t, 1, r.Len())

	err = r.Remove(key(3))
	assert.ErrorIs(t, err, ErrUnknownExtension)

	require.NoError(t, r.Remove(key(2)))
	assert.False(t, r.Contains(key(2)))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryMembershipMatchesHistory(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	for i := byte(1); i <= 10; i++ {
		require.NoError(t, r.Insert(key(i)))
	}
	for i := byte(2); i <= 10; i += 2 {
		require.NoError(t, r.Remove(key(i)))
	}

	for i := byte(1); i <= 10; i++ {
		assert.Equal(t, i%2 == 1, r.Contains(key(i)), "key %d", i)
	}
}

func TestRegistryEnumerateAscending(t *testing.T) {
	r, err := NewRegistry(key(0x30), key(0x01), key(0xff), key(0x10))
	require.NoError(t, err)

	assert.Equal(t, []tlb.Bits256{key(0x01), key(0x10), key(0x30), key(0xff)}, r.Enumerate())
}

func TestRegistryEnumerateEmpty(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	keys := r.Enumerate()
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
}

func TestRegistryNewRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(key(1), key(1))
	assert.ErrorIs(t, err, ErrDuplicateExtension)
}

func TestRegistryCloneIsIndependent(t *testing.T) {
	r, err := NewRegistry(key(1))
	require.NoError(t, err)

	clone := r.Clone()
	require.NoError(t, clone.Insert(key(2)))

	assert.False(t, r.Contains(key(2)))
	assert.True(t, clone.Contains(key(2)))
}

func TestRegistryCellRoundTrip(t *testing.T) {
	r, err := NewRegistry(key(9), key(4), key(200))
	require.NoError(t, err)

	c, err := r.Cell()
	require.NoError(t, err)

	loaded, err := LoadRegistry(c)
	require.NoError(t, err)
	assert.Equal(t, r.Enumerate(), loaded.Enumerate())
}

func TestRegistryEmptyCellIsSingleBit(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	c, err := r.Cell()
	require.NoError(t, err)
	assert.Equal(t, 1, c.BitSize())
	assert.Empty(t, c.Refs())
}
