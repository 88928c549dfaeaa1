package app

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed valman.CommitKVStore
	deliver   valman.KVCacheWrap
	check     valman.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk or panics. It sets up the
// deliver and check caches.
func NewCommitStore(store valman.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (valman.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit flushes deliver to the underlying store and persists it. New
// deliver and check caches are created afterwards.
func (cs *CommitStore) Commit() (valman.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return valman.CommitID{}, err
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns the store used during the checking phase.
func (cs *CommitStore) CheckStore() valman.CacheableKVStore {
	return cs.check
}

// DeliverStore returns the store used during the delivery phase.
func (cs *CommitStore) DeliverStore() valman.CacheableKVStore {
	return cs.deliver
}

// _vm: is the prefix of application internal data
const chainIDKey = "_vm:chainID"

// mustLoadChainID returns the chain id stored if any. It panics on a
// database error.
func mustLoadChainID(kv valman.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID stores a chain id in the kv store. It fails if the chain
// id is already set or invalid.
func saveChainID(kv valman.KVStore, chainID string) error {
	if !valman.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
