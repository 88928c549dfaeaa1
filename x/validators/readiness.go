package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x/sessionkeys"
)

// KeyReadinessGate decides whether a validator has published a complete
// consensus key bundle.
type KeyReadinessGate struct {
	keys KeyLookup
}

// NewKeyReadinessGate returns a gate reading bundles from keys.
func NewKeyReadinessGate(keys KeyLookup) KeyReadinessGate {
	return KeyReadinessGate{keys: keys}
}

// IsReady returns false if the bundle of id is missing or incomplete. An
// error is returned only if the bundle could not be read.
func (g KeyReadinessGate) IsReady(db valman.ReadOnlyKVStore, id valman.ValidatorID) (bool, error) {
	switch err := g.Check(db, id); {
	case err == nil:
		return true, nil
	case ErrKeyNotReady.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Check works like IsReady, but returns ErrKeyNotReady with the reason
// instead of false.
func (g KeyReadinessGate) Check(db valman.ReadOnlyKVStore, id valman.ValidatorID) error {
	bundle, err := g.keys.Keys(db, id)
	if err != nil {
		if errors.ErrInput.Is(err) {
			return errors.Wrapf(ErrKeyNotReady, "%s: malformed bundle", id)
		}
		return errors.Wrap(err, "key lookup")
	}
	if bundle == nil {
		return errors.Wrapf(ErrKeyNotReady, "%s: no keys", id)
	}
	if err := sessionkeys.CheckComplete(bundle); err != nil {
		return errors.Wrapf(ErrKeyNotReady, "%s: %s", id, err)
	}
	return nil
}
