package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// Genesis is the part of the tendermint genesis file read by the
// application.
type Genesis struct {
	ChainID  string         `json:"chain_id"`
	AppState valman.Options `json:"app_state"`
}

// LoadGenesis reads the genesis file at path.
func LoadGenesis(path string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, "read genesis file: "+err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrap(errors.ErrInput, "parse genesis file: "+err.Error())
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...valman.Initializer) valman.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []valman.Initializer
}

// FromGenesis passes opts to all Initializers in order, aborting at the
// first error.
func (c chainInitializer) FromGenesis(opts valman.Options, params valman.GenesisParams, kv valman.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
