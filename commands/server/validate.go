package server

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/app"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/store"
)

// ValidateGenesis runs ini against the app state of every genesis file
// in paths. Nothing is persisted.
func ValidateGenesis(ini valman.Initializer, paths []string) error {
	for _, path := range paths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini valman.Initializer, path string) error {
	gen, err := app.LoadGenesis(path)
	if err != nil {
		return err
	}
	if len(gen.AppState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state")
	}
	db := store.MemStore()
	if err := ini.FromGenesis(gen.AppState, valman.GenesisParams{}, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
