package sessionkeys

import (
	"io"

	"github.com/iov-one/valman/errors"
	"golang.org/x/crypto/ed25519"
)

// GenerateBundle returns a complete bundle for development chains. The
// finality key is a fresh ed25519 key. The authoring key is random data
// of the expected size, as there is no sr25519 implementation here.
func GenerateBundle(r io.Reader) (*KeyBundle, ed25519.PrivateKey, error) {
	aura := make([]byte, KeySize)
	if _, err := io.ReadFull(r, aura); err != nil {
		return nil, nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	gran, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	b := &KeyBundle{
		Keys: []RoleKey{
			{Role: RoleAura, Type: "sr25519", Data: aura},
			{Role: RoleGran, Type: "ed25519", Data: gran},
		},
	}
	return b, priv, nil
}
