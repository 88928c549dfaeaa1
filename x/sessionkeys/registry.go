package sessionkeys

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// DefaultCacheSize is the number of decoded bundles a Registry keeps.
const DefaultCacheSize = 256

// Registry stores key bundles by validator id.
//
// Decoded bundles are cached by the hash of their encoding, so a cached
// entry can never be stale. Every call returns a copy that the caller
// is free to modify.
type Registry struct {
	decoded *lru.Cache[[sha256.Size]byte, *KeyBundle]
}

// NewRegistry returns a registry caching up to size decoded bundles.
func NewRegistry(size int) *Registry {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[[sha256.Size]byte, *KeyBundle](size)
	if err != nil {
		panic(err)
	}
	return &Registry{decoded: cache}
}

// Keys returns the bundle registered for id or nil if there is none.
func (r *Registry) Keys(db valman.ReadOnlyKVStore, id valman.ValidatorID) (*KeyBundle, error) {
	raw, err := db.Get(bundleKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return nil, nil
	}
	sum := sha256.Sum256(raw)
	if b, ok := r.decoded.Get(sum); ok {
		return b.Copy(), nil
	}
	var b KeyBundle
	if err := b.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "bundle of %s", id)
	}
	r.decoded.Add(sum, &b)
	return b.Copy(), nil
}

// Save validates and stores the bundle of id, replacing any previous one.
func (r *Registry) Save(db valman.KVStore, id valman.ValidatorID, b *KeyBundle) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return errors.Wrap(err, "bundle")
	}
	raw, err := b.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return db.Set(bundleKey(id), raw)
}

// Delete removes the bundle of id. It fails if none is registered.
func (r *Registry) Delete(db valman.KVStore, id valman.ValidatorID) error {
	k := bundleKey(id)
	ok, err := db.Has(k)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "keys of %s", id)
	}
	return db.Delete(k)
}

// FinalityKey returns the finality voting key of id.
func (r *Registry) FinalityKey(db valman.ReadOnlyKVStore, id valman.ValidatorID) (RoleKey, error) {
	b, err := r.Keys(db, id)
	if err != nil {
		return RoleKey{}, err
	}
	if b == nil {
		return RoleKey{}, errors.Wrapf(errors.ErrNotFound, "keys of %s", id)
	}
	k, ok := b.Key(RoleGran)
	if !ok {
		return RoleKey{}, errors.Wrapf(errors.ErrNotFound, "%s key of %s", RoleGran, id)
	}
	return k, nil
}
