package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// ProjectedCount returns the size of the validator set once all queued
// changes and one more removal are applied. It never goes below zero.
func ProjectedCount(active, additions, removals int) int {
	n := active + additions - removals - 1
	if n < 0 {
		return 0
	}
	return n
}

// InvariantChecker refuses removals that would leave the chain with fewer
// validators than the configured minimum.
type InvariantChecker struct {
	queues Queues
}

// CheckRemoval returns ErrTooFewValidators if removing one more validator
// from active would break the minimum. The projection assumes every
// queued change is applied, which the Reconciler verifies again.
func (c InvariantChecker) CheckRemoval(db valman.ReadOnlyKVStore, conf Configuration, active []valman.ValidatorID) error {
	additions, err := c.queues.Load(db, Additions)
	if err != nil {
		return err
	}
	removals, err := c.queues.Load(db, Removals)
	if err != nil {
		return err
	}
	projected := ProjectedCount(len(active), len(additions), len(removals))
	if projected < int(conf.MinAuthorities) {
		return errors.Wrapf(ErrTooFewValidators, "%d validators left, minimum is %d", projected, conf.MinAuthorities)
	}
	return nil
}
