package weavetest

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/valman"
	"golang.org/x/crypto/ed25519"
)

var condSeq uint64

// NewCondition returns a unique condition. Each call returns a
// different one.
func NewCondition() valman.Condition {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, atomic.AddUint64(&condSeq, 1))
	return valman.NewCondition("test", "seq", id)
}

// NewValidatorID returns the validator identity of a unique account.
func NewValidatorID() valman.ValidatorID {
	return valman.ValidatorID(NewCondition().Address())
}

// NewKey returns a random ed25519 key pair.
func NewKey() (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return pub, priv
}

// KeyCondition returns the signature condition of an ed25519 public key.
func KeyCondition(pub ed25519.PublicKey) valman.Condition {
	return valman.NewCondition("sigs", "ed25519", pub)
}
