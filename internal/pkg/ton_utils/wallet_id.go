package ton_utils

import (
	"errors"
	"fmt"
)

const (
	WalletVersionV5R1 = "v5r1"

	MainnetGlobalID int32 = -239
	TestnetGlobalID int32 = -3

	walletIDWorkchainBits = 8
	walletIDVersionBits   = 8
	walletIDSubwalletBits = 15
	walletIDCustomBits    = 31

	walletIDClientFlag     uint32 = 1 << 31
	walletIDWorkchainShift        = walletIDVersionBits + walletIDSubwalletBits
	walletIDVersionShift          = walletIDSubwalletBits

	MaxSubwalletNumber uint32 = 1<<walletIDSubwalletBits - 1
	MaxCustomContext   uint32 = 1<<walletIDCustomBits - 1
)

var (
	ErrUnknownWalletVersion = errors.New("unknown wallet version")
	ErrWalletIDRange        = errors.New("wallet id field out of range")
)

var walletVersions = map[string]uint8{
	WalletVersionV5R1: 0,
}

// WalletIDContext is the deployment context half of a wallet id. Client contexts
// carry workchain, version and subwallet; custom contexts carry an opaque 31-bit value.
type WalletIDContext struct {
	Workchain       int8   `json:"workchain" msgpack:"workchain"`
	WalletVersion   string `json:"walletVersion,omitempty" msgpack:"wallet_version"`
	SubwalletNumber uint32 `json:"subwalletNumber" msgpack:"subwallet_number"`
	IsCustom        bool   `json:"isCustom,omitempty" msgpack:"is_custom"`
	Custom          uint32 `json:"custom,omitempty" msgpack:"custom"`
}

type WalletID struct {
	NetworkGlobalID int32           `json:"networkGlobalId" msgpack:"network_global_id"`
	Context         WalletIDContext `json:"context" msgpack:"context"`
}

// DefaultWalletID is subwallet 0 on the basechain.
func DefaultWalletID(networkGlobalID int32) WalletID {
	return WalletID{
		NetworkGlobalID: networkGlobalID,
		Context: WalletIDContext{
			Workchain:     0,
			WalletVersion: WalletVersionV5R1,
		},
	}
}

func contextWord(c WalletIDContext) (uint32, error) {
	if c.IsCustom {
		if c.Custom > MaxCustomContext {
			return 0, fmt.Errorf("%w: custom context %d", ErrWalletIDRange, c.Custom)
		}
		return c.Custom, nil
	}

	version, ok := walletVersions[c.WalletVersion]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWalletVersion, c.WalletVersion)
	}
	if c.SubwalletNumber > MaxSubwalletNumber {
		return 0, fmt.Errorf("%w: subwallet number %d", ErrWalletIDRange, c.SubwalletNumber)
	}

	return walletIDClientFlag |
		uint32(uint8(c.Workchain))<<walletIDWorkchainShift |
		uint32(version)<<walletIDVersionShift |
		c.SubwalletNumber, nil
}

// PackWalletID folds the context word into the network global id with xor.
func PackWalletID(id WalletID) (int32, error) {
	word, err := contextWord(id.Context)
	if err != nil {
		return 0, err
	}
	return int32(uint32(id.NetworkGlobalID) ^ word), nil
}

func MustPackWalletID(id WalletID) int32 {
	word, err := PackWalletID(id)
	if err != nil {
		panic(err)
	}
	return word
}

// UnpackWalletID needs the network global id the word was packed for; it is not
// stored in the word itself. Unknown version bytes still decode every other field.
func UnpackWalletID(word int32, networkGlobalID int32) (WalletID, error) {
	context := uint32(word) ^ uint32(networkGlobalID)
	id := WalletID{NetworkGlobalID: networkGlobalID}

	if context&walletIDClientFlag == 0 {
		id.Context = WalletIDContext{IsCustom: true, Custom: context}
		return id, nil
	}

	id.Context.Workchain = int8(uint8(context >> walletIDWorkchainShift))
	id.Context.SubwalletNumber = context & MaxSubwalletNumber

	version := uint8(context >> walletIDVersionShift)
	for name, v := range walletVersions {
		if v == version {
			id.Context.WalletVersion = name
			return id, nil
		}
	}
	return id, fmt.Errorf("%w: version byte %d", ErrUnknownWalletVersion, version)
}
