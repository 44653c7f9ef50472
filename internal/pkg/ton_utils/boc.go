package ton_utils

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/tonkeeper/tongo/boc"
)

var ErrEmptyBoc = errors.New("boc has no root cell")

// DecodeBocBase64 accepts padded and unpadded standard base64.
func DecodeBocBase64(s string) (*boc.Cell, error) {
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
	if err != nil {
		return nil, err
	}
	cells, err := boc.DeserializeBoc(raw)
	if err != nil {
		return nil, err
	}
	if len(cells) < 1 {
		return nil, ErrEmptyBoc
	}
	return cells[0], nil
}

func EncodeBocBase64(c *boc.Cell) (string, error) {
	raw, err := c.ToBoc()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
