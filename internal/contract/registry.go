package contract

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
)

// Registry is the set of extension address hashes, kept sorted ascending by key.
// Persisted as HashmapE 256 int1 with -1 as the value for every member.
type Registry struct {
	keys []tlb.Bits256
}

func NewRegistry(keys ...tlb.Bits256) (*Registry, error) {
	r := &Registry{}
	for _, key := range keys {
		if err := r.Insert(key); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func compareKeys(a, b tlb.Bits256) int {
	return bytes.Compare(a[:], b[:])
}

func (r *Registry) search(key tlb.Bits256) (int, bool) {
	return slices.BinarySearchFunc(r.keys, key, compareKeys)
}

func (r *Registry) Contains(key tlb.Bits256) bool {
	if r == nil {
		return false
	}
	_, found := r.search(key)
	return found
}

func (r *Registry) Insert(key tlb.Bits256) error {
	i, found := r.search(key)
	if found {
		return fmt.Errorf("%w: %x", ErrDuplicateExtension, key[:])
	}
	r.keys = slices.Insert(r.keys, i, key)
	return nil
}

func (r *Registry) Remove(key tlb.Bits256) error {
	i, found := r.search(key)
	if !found {
		return fmt.Errorf("%w: %x", ErrUnknownExtension, key[:])
	}
	r.keys = slices.Delete(r.keys, i, i+1)
	return nil
}

// Enumerate returns a copy of the keys in ascending order, never nil.
func (r *Registry) Enumerate() []tlb.Bits256 {
	if r == nil {
		return []tlb.Bits256{}
	}
	return append(make([]tlb.Bits256, 0, len(r.keys)), r.keys...)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func (r *Registry) Clone() *Registry {
	return &Registry{keys: r.Enumerate()}
}

type extensionMarker struct{}

func (extensionMarker) MarshalTLB(c *boc.Cell, encoder *tlb.Encoder) error {
	return c.WriteInt(-1, 1)
}

func (*extensionMarker) UnmarshalTLB(c *boc.Cell, decoder *tlb.Decoder) error {
	_, err := c.ReadInt(1)
	return err
}

func (r *Registry) dictionary() tlb.HashmapE[tlb.Bits256, extensionMarker] {
	keys := r.Enumerate()
	return tlb.NewHashmapE(keys, make([]extensionMarker, len(keys)))
}

// StoreTo appends the HashmapE form to c: a single zero bit when empty, otherwise a
// one bit and a ref to the dictionary root.
func (r *Registry) StoreTo(c *boc.Cell) error {
	return tlb.Marshal(c, r.dictionary())
}

// Cell returns the HashmapE form in a cell of its own.
func (r *Registry) Cell() (*boc.Cell, error) {
	c := boc.NewCell()
	if err := r.StoreTo(c); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadRegistry(c *boc.Cell) (*Registry, error) {
	var dict tlb.HashmapE[tlb.Bits256, extensionMarker]
	if err := tlb.Unmarshal(c, &dict); err != nil {
		return nil, fmt.Errorf("load extensions: %w", err)
	}
	return NewRegistry(dict.Keys()...)
}
