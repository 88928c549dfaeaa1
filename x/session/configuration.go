package session

import (
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/gconf"
)

const confPkg = "session"

// Configuration is stored in the database under the "session" package
// name.
type Configuration struct {
	// Period is the number of blocks in a session.
	Period int64 `json:"period"`
	// Offset is the height of the first session boundary.
	Offset int64 `json:"offset"`
	// ValidatorPower is the tendermint voting power of every validator.
	ValidatorPower int64 `json:"validator_power"`
}

// DefaultConfiguration is used when the genesis does not configure this
// extension.
func DefaultConfiguration() Configuration {
	return Configuration{
		Period:         100,
		Offset:         0,
		ValidatorPower: 10,
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
	if c.Period < 1 {
		errs = errors.AppendField(errs, "Period", errors.Wrapf(errors.ErrInput, "%d", c.Period))
	}
	if c.Offset < 0 {
		errs = errors.AppendField(errs, "Offset", errors.Wrapf(errors.ErrInput, "%d", c.Offset))
	}
	if c.ValidatorPower < 1 {
		errs = errors.AppendField(errs, "ValidatorPower", errors.Wrapf(errors.ErrInput, "%d", c.ValidatorPower))
	}
	return errs
}

// ShouldEndSession returns true if a new session starts at height.
func (c Configuration) ShouldEndSession(height int64) bool {
	if height <= 0 || height < c.Offset {
		return false
	}
	return (height-c.Offset)%c.Period == 0
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
