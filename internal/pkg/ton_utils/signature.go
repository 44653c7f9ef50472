package ton_utils

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/tonkeeper/tongo/boc"
)

const (
	signatureBits = ed25519.SignatureSize * 8
)

var ErrMissingSignature = errors.New("body too short to carry a signature")

func SignatureVerify(pubkey ed25519.PublicKey, message, signature []byte) bool {
	if len(pubkey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pubkey, message, signature)
}

// SplitSignedCell separates the trailing 512-bit signature from the part of the cell it
// covers and returns the representation hash of that part. The cell's read cursor is
// reset before and after.
func SplitSignedCell(body *boc.Cell) ([32]byte, [ed25519.SignatureSize]byte, error) {
	var hash [32]byte
	var signature [ed25519.SignatureSize]byte

	body.ResetCounters()
	defer body.ResetCounters()

	total := body.BitSize()
	if total < signatureBits {
		return hash, signature, ErrMissingSignature
	}

	bits, err := body.ReadBits(total - signatureBits)
	if err != nil {
		return hash, signature, err
	}
	raw, err := body.ReadBytes(ed25519.SignatureSize)
	if err != nil {
		return hash, signature, err
	}
	copy(signature[:], raw)

	signed := boc.NewCell()
	if err := signed.WriteBitString(bits); err != nil {
		return hash, signature, err
	}
	for _, ref := range body.Refs() {
		if err := signed.AddRef(ref); err != nil {
			return hash, signature, err
		}
	}

	h, err := signed.Hash()
	if err != nil {
		return hash, signature, err
	}
	copy(hash[:], h)
	return hash, signature, nil
}

// AppendSignature signs the representation hash of body and writes the signature
// into the tail of the same cell.
func AppendSignature(privateKey ed25519.PrivateKey, body *boc.Cell) error {
	if len(privateKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("invalid private key length %d", len(privateKey))
	}
	hash, err := body.Hash()
	if err != nil {
		return err
	}
	return body.WriteBytes(ed25519.Sign(privateKey, hash))
}
