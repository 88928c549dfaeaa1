package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/x/sessionkeys"
)

// ActiveSetReader gives read access to the validator set currently in
// force. It is implemented by the session extension.
type ActiveSetReader interface {
	ActiveSet(db valman.ReadOnlyKVStore) ([]valman.ValidatorID, error)
}

// KeyLookup returns the consensus key bundle of a validator, or nil if
// none is registered.
type KeyLookup interface {
	Keys(db valman.ReadOnlyKVStore, id valman.ValidatorID) (*sessionkeys.KeyBundle, error)
}

// ValidatorOf converts an account address into a validator id. The
// conversion must be injective. ok is false for accounts that cannot
// act as a validator.
type ValidatorOf interface {
	Convert(valman.Address) (id valman.ValidatorID, ok bool)
}

// IdentityMapping uses the account address as the validator id.
type IdentityMapping struct{}

var _ ValidatorOf = IdentityMapping{}

func (IdentityMapping) Convert(a valman.Address) (valman.ValidatorID, bool) {
	if len(a) == 0 {
		return nil, false
	}
	return valman.ValidatorID(append([]byte(nil), a...)), true
}
