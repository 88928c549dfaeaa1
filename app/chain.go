package app

import (
	"reflect"

	"github.com/iov-one/valman"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []valman.Decorator
}

/*
ChainDecorators takes a chain of decorators and, once the final Handler
is added, returns a Handler that executes the whole stack. The first
decorator is the outermost one.

  app.ChainDecorators(
    utils.NewRecovery(),
    utils.NewLogging(),
    origin.NewDecorator(),
    utils.NewSavepoint().OnDeliver(),
  ).WithHandler(router)
*/
func ChainDecorators(chain ...valman.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a copy with more decorators appended. Nil decorators are
// skipped.
func (d Decorators) Chain(chain ...valman.Decorator) Decorators {
	next := make([]valman.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dc := range chain {
		if isNilDecorator(dc) {
			continue
		}
		next = append(next, dc)
	}
	return Decorators{chain: next}
}

func isNilDecorator(d valman.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler resolves the stack and returns a Handler that passes
// through all decorators before calling h.
func (d Decorators) WithHandler(h valman.Handler) valman.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step executes one decorator around a Handler.
type step struct {
	d    valman.Decorator
	next valman.Handler
}

var _ valman.Handler = step{}

func (s step) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	return s.d.Check(ctx, db, tx, s.next)
}

func (s step) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	return s.d.Deliver(ctx, db, tx, s.next)
}
