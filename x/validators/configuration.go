package validators

import (
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/gconf"
)

const confPkg = "validators"

// Merge orders of the queued changes.
const (
	RemovalsFirst  = "removals_first"
	AdditionsFirst = "additions_first"
)

// Configuration is stored in the database under the "validators" package
// name.
type Configuration struct {
	// MinAuthorities is the smallest validator set the chain can run
	// with.
	MinAuthorities uint32 `json:"min_authorities"`
	// BootstrapSessions is the number of sessions after the genesis
	// session during which the validator set does not change.
	BootstrapSessions uint32 `json:"bootstrap_sessions"`
	// MergeOrder decides which queue is applied first. With removals
	// applied first, a validator queued in both ends up in the set.
	MergeOrder string `json:"merge_order"`
}

// DefaultConfiguration is used when the genesis does not configure this
// extension.
func DefaultConfiguration() Configuration {
	return Configuration{
		MinAuthorities:    2,
		BootstrapSessions: 1,
		MergeOrder:        RemovalsFirst,
	}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, c); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func (c *Configuration) Validate() error {
	var errs error
	if c.MinAuthorities == 0 {
		errs = errors.AppendField(errs, "MinAuthorities", errors.ErrEmpty)
	}
	switch c.MergeOrder {
	case RemovalsFirst, AdditionsFirst:
	default:
		errs = errors.AppendField(errs, "MergeOrder", errors.Wrapf(errors.ErrInput, "%q", c.MergeOrder))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
