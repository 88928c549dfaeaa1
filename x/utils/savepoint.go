package utils

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// Savepoint isolates all writes done down the stack and only writes them
// when no error was returned. This makes every transaction all or
// nothing.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ valman.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator. Call OnCheck or OnDeliver
// to enable it.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on CheckTx
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a savepoint that will trigger on DeliverTx
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Checker) (*valman.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, db, tx)
	}
	var res *valman.CheckResult
	err := withSavepoint(db, func(kv valman.KVStore) error {
		var err error
		res, err = next.Check(ctx, kv, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Deliverer) (*valman.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, db, tx)
	}
	var res *valman.DeliverResult
	err := withSavepoint(db, func(kv valman.KVStore) error {
		var err error
		res, err = next.Deliver(ctx, kv, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withSavepoint runs fn on a cache of db and writes the cache only if fn
// succeeded. A store that cannot be cached is used directly.
func withSavepoint(db valman.KVStore, fn func(valman.KVStore) error) error {
	cstore, ok := db.(valman.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
