package session

import (
	"context"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/gconf"
)

// Initializer loads the configuration and builds the validator set of
// session 0.
type Initializer struct {
	Manager Manager
	Keys    KeySource
}

var _ valman.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts valman.Options, params valman.GenesisParams, kv valman.KVStore) error {
	var conf Configuration
	def := DefaultConfiguration()
	if err := gconf.InitConfigOrDefault(kv, opts, confPkg, &conf, &def); err != nil {
		return errors.Wrap(err, "init config")
	}
	if i.Manager == nil || i.Keys == nil {
		return errors.Wrap(errors.ErrHuman, "session manager and key source are required")
	}

	ctx := context.Background()
	set, err := i.Manager.NewSession(ctx, kv, 0)
	if err != nil {
		return errors.Wrap(err, "genesis session")
	}
	t := NewTicker(i.Manager, i.Keys)
	if err := t.apply(ctx, kv, conf, &State{}, 0, set); err != nil {
		return err
	}
	i.Manager.StartSession(ctx, kv, 0)
	return nil
}
