package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

func toHex(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src)*2+2)
	copy(dst, `0x`)
	hex.Encode(dst[2:], src)
	return dst
}

func fromHex(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	if len(src) < 2 || src[0] != '0' || (src[1] != 'x' && src[1] != 'X') {
		return nil, errors.New("hex string without 0x prefix")
	}
	src = src[2:]
	dst := make([]byte, hex.DecodedLen(len(src)))
	if _, err := hex.Decode(dst, src); err != nil {
		return nil, fmt.Errorf("decoding hex string: %w", err)
	}
	return dst, nil
}
