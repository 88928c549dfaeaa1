/*
Package bech32 renders binary identifiers in the bech32 format, with a
human readable prefix and a checksum.
*/
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/valman/errors"
)

// Decode returns the human readable part and the raw payload of the
// given bech32 string.
func Decode(raw string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	return hrp, payload, nil
}

// DecodeHRP works like Decode but fails unless the human readable part
// equals want.
func DecodeHRP(want, raw string) ([]byte, error) {
	hrp, payload, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if hrp != want {
		return nil, errors.Wrapf(errors.ErrInput, "want %q prefix, got %q", want, hrp)
	}
	return payload, nil
}

// Encode returns the bech32 representation of payload.
func Encode(hrp string, payload []byte) ([]byte, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	raw, err := bech32.Encode(hrp, data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "encode: %s", err)
	}
	return []byte(raw), nil
}
