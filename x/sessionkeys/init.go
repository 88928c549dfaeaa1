package sessionkeys

import (
	"fmt"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

const optKey = "sessionkeys"

// GenesisKeys is the bundle of a single validator in the genesis file.
type GenesisKeys struct {
	Validator valman.ValidatorID `json:"validator"`
	Keys      []RoleKey          `json:"keys"`
}

// Initializer loads the key bundles registered at genesis.
type Initializer struct {
	Registry *Registry
}

var _ valman.Initializer = (*Initializer)(nil)

// FromGenesis stores every bundle listed under "sessionkeys".
func (i *Initializer) FromGenesis(opts valman.Options, params valman.GenesisParams, kv valman.KVStore) error {
	var state struct {
		Keys []GenesisKeys `json:"keys"`
	}
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	for n, entry := range state.Keys {
		b := KeyBundle{Keys: entry.Keys}
		if err := CheckComplete(&b); err != nil {
			return errors.Field(fmt.Sprintf("Keys.%d", n), err, "incomplete bundle")
		}
		if err := i.Registry.Save(kv, entry.Validator, &b); err != nil {
			return errors.Field(fmt.Sprintf("Keys.%d", n), err, "cannot save keys")
		}
	}
	return nil
}
