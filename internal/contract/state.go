package contract

import (
	"crypto/ed25519"
	"fmt"
	"math/big"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"

	"walletv5/internal/pkg/ton_utils"
)

// Config is what the deployer supplies at contract creation.
type Config struct {
	SignatureAllowed bool
	Seqno            uint32
	Identity         ton_utils.WalletID
	PublicKey        ed25519.PublicKey
	Extensions       []ton.AccountID
}

func DefaultConfig(publicKey ed25519.PublicKey, networkGlobalID int32) Config {
	return Config{
		SignatureAllowed: true,
		Identity:         ton_utils.DefaultWalletID(networkGlobalID),
		PublicKey:        publicKey,
	}
}

type AccountState struct {
	Seqno            uint32
	PublicKey        tlb.Bits256
	Identity         ton_utils.WalletID
	SignatureAllowed bool
	Extensions       *Registry
}

func NewAccountState(cfg Config) (*AccountState, error) {
	if len(cfg.PublicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length %d", len(cfg.PublicKey))
	}
	if _, err := ton_utils.PackWalletID(cfg.Identity); err != nil {
		return nil, err
	}

	state := &AccountState{
		Seqno:            cfg.Seqno,
		Identity:         cfg.Identity,
		SignatureAllowed: cfg.SignatureAllowed,
		Extensions:       &Registry{},
	}
	copy(state.PublicKey[:], cfg.PublicKey)

	for _, ext := range cfg.Extensions {
		if ext.Workchain != state.Workchain() {
			return nil, fmt.Errorf("%w: %s", ErrExtensionWorkchain, ext.ToRaw())
		}
		if err := state.Extensions.Insert(ext.Address); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// Workchain is where the wallet lives. Custom identity contexts carry no workchain and
// always deploy to the basechain.
func (s *AccountState) Workchain() int32 {
	if s.Identity.Context.IsCustom {
		return 0
	}
	return int32(s.Identity.Context.Workchain)
}

func (s *AccountState) Clone() *AccountState {
	next := *s
	next.Extensions = s.Extensions.Clone()
	return &next
}

func (s *AccountState) isExtension(sender ton.AccountID) bool {
	return sender.Workchain == s.Workchain() && s.Extensions.Contains(sender.Address)
}

// ToCell serializes the state as
// is_signature_allowed:(## 1) seqno:(## 32) wallet_id:(## 32) public_key:(## 256) extensions_dict:(HashmapE 256 int1)
func (s *AccountState) ToCell() (*boc.Cell, error) {
	walletID, err := ton_utils.PackWalletID(s.Identity)
	if err != nil {
		return nil, err
	}

	c := boc.NewCell()
	if err := c.WriteBit(s.SignatureAllowed); err != nil {
		return nil, err
	}
	if err := c.WriteUint(uint64(s.Seqno), 32); err != nil {
		return nil, err
	}
	if err := c.WriteInt(int64(walletID), 32); err != nil {
		return nil, err
	}
	if err := c.WriteBytes(s.PublicKey[:]); err != nil {
		return nil, err
	}
	if err := s.Extensions.StoreTo(c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadAccountState parses a state cell. The network global id is not part of the
// stored word and has to come from the chain.
func LoadAccountState(c *boc.Cell, networkGlobalID int32) (*AccountState, error) {
	c.ResetCounters()

	allowed, err := c.ReadBit()
	if err != nil {
		return nil, err
	}
	seqno, err := c.ReadUint(32)
	if err != nil {
		return nil, err
	}
	walletID, err := c.ReadInt(32)
	if err != nil {
		return nil, err
	}
	publicKey, err := c.ReadBytes(32)
	if err != nil {
		return nil, err
	}
	extensions, err := LoadRegistry(c)
	if err != nil {
		return nil, err
	}

	identity, err := ton_utils.UnpackWalletID(int32(walletID), networkGlobalID)
	if err != nil {
		return nil, err
	}

	state := &AccountState{
		Seqno:            uint32(seqno),
		Identity:         identity,
		SignatureAllowed: allowed,
		Extensions:       extensions,
	}
	copy(state.PublicKey[:], publicKey)
	return state, nil
}

// Address derives the deployment address from the state. Only meaningful for the
// initial state, the address does not move when the state changes afterwards.
func (s *AccountState) Address() (ton.AccountID, error) {
	c, err := s.ToCell()
	if err != nil {
		return ton.AccountID{}, err
	}
	return ton_utils.StateInitAddress(s.Workchain(), c)
}

func (s *AccountState) GetSeqno() uint32 {
	return s.Seqno
}

func (s *AccountState) GetPublicKey() *big.Int {
	return new(big.Int).SetBytes(s.PublicKey[:])
}

func (s *AccountState) GetWalletID() int32 {
	return ton_utils.MustPackWalletID(s.Identity)
}

func (s *AccountState) GetWalletIDParsed() ton_utils.WalletID {
	return s.Identity
}

// GetExtensions returns the raw HashmapE cell.
func (s *AccountState) GetExtensions() (*boc.Cell, error) {
	return s.Extensions.Cell()
}

// GetExtensionsArray returns the registered extensions as addresses in ascending key
// order. Empty registry gives an empty slice.
func (s *AccountState) GetExtensionsArray() []ton.AccountID {
	keys := s.Extensions.Enumerate()
	addrs := make([]ton.AccountID, 0, len(keys))
	for _, key := range keys {
		addrs = append(addrs, ton.AccountID{Workchain: s.Workchain(), Address: key})
	}
	return addrs
}
