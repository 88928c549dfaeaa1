package gconf

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// ReadStore is a subset of valman.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of valman.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is implemented by a configuration that can serialize
// itself. Validate is called before every write.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is implemented by a configuration that can load its state
// from the binary representation.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by every extension configuration.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates src and writes it as the configuration of pkg.
func Save(db Store, pkg string, src ValidMarshaler) error {
	k := key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", k)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", k)
	}
	return db.Set(k, raw)
}

// Load reads the configuration of pkg into dst. ErrNotFound is returned
// if the configuration was never saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	k := key(pkg)
	raw, err := db.Get(k)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", k)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", k)
	}
	return nil
}

// InitConfig parses opts["conf"][pkg] into conf, validates it and saves it
// under the configuration key of pkg.
func InitConfig(db Store, opts valman.Options, pkg string, conf Configuration) error {
	var confOptions valman.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(errors.ErrInput, "read conf: "+err.Error())
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "read configuration for %s: %s", pkg, err)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}

// InitConfigOrDefault works like InitConfig, but saves def when the
// genesis does not configure pkg. In both cases conf holds the saved
// configuration on return.
func InitConfigOrDefault(db Store, opts valman.Options, pkg string, conf Configuration, def ValidMarshaler) error {
	err := InitConfig(db, opts, pkg, conf)
	if !errors.ErrNotFound.Is(err) {
		return err
	}
	if err := Save(db, pkg, def); err != nil {
		return errors.Wrapf(err, "save default configuration for %s", pkg)
	}
	if err := Load(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "load default configuration for %s", pkg)
	}
	return nil
}
