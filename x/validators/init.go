package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/gconf"
)

const optKey = "validators"

// GenesisState is the "validators" section of the genesis file.
type GenesisState struct {
	// Admins may queue validator set changes.
	Admins []valman.Address `json:"admins"`
	// InitialValidators are the accounts forming the set of session 0.
	InitialValidators []valman.Address `json:"initial_validators"`
}

// Initializer loads the configuration, the administrators and the
// genesis validators.
type Initializer struct {
	// Mapping converts the initial accounts. IdentityMapping is used if
	// nil.
	Mapping ValidatorOf
}

var _ valman.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts valman.Options, params valman.GenesisParams, kv valman.KVStore) error {
	var conf Configuration
	def := DefaultConfiguration()
	if err := gconf.InitConfigOrDefault(kv, opts, confPkg, &conf, &def); err != nil {
		return errors.Wrap(err, "init config")
	}

	var state GenesisState
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := saveAdmins(kv, state.Admins); err != nil {
		return err
	}
	for n, a := range state.InitialValidators {
		if err := a.Validate(); err != nil {
			return errors.Field("InitialValidators", err, "account %d", n)
		}
	}
	mapping := i.Mapping
	if mapping == nil {
		mapping = IdentityMapping{}
	}
	if err := Bootstrap(kv, mapping, state.InitialValidators); err != nil {
		return errors.Wrap(err, "bootstrap")
	}
	return nil
}
