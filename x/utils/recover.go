package utils

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// Recovery is a decorator that turns panics in transactions into
// ErrPanic errors.
type Recovery struct{}

var _ valman.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Checker) (_ *valman.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Deliverer) (_ *valman.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, db, tx)
}
