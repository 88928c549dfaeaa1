/*
Package origin authenticates the transaction origin.

The origin is the list of conditions carried by a transaction, fulfilled
before the transaction reached the application. The decorator validates
them and makes them available to handlers through Authenticate.
*/
package origin

import (
	"context"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x"
)

// OriginTx is implemented by transactions carrying their origin.
type OriginTx interface {
	valman.Tx
	GetOrigin() []valman.Condition
}

type contextKey int

const contextKeyOrigin contextKey = iota

// withOrigin is private, only the decorator can set the origin.
func withOrigin(ctx valman.Context, conds []valman.Condition) valman.Context {
	return context.WithValue(ctx, contextKeyOrigin, conds)
}

// Authenticate returns the origin stored in the context.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the origin of the current transaction. May be
// empty.
func (Authenticate) GetConditions(ctx valman.Context) []valman.Condition {
	val, _ := ctx.Value(contextKeyOrigin).([]valman.Condition)
	return val
}

// HasAddress returns true if the address of any origin condition is addr.
func (a Authenticate) HasAddress(ctx valman.Context, addr valman.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// Decorator puts the origin of the transaction into the context.
type Decorator struct {
	allowMissing bool
}

var _ valman.Decorator = Decorator{}

// NewDecorator returns a decorator that requires an origin to be present.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissing lets transactions without origin pass.
func (d Decorator) AllowMissing() Decorator {
	d.allowMissing = true
	return d
}

func (d Decorator) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Checker) (*valman.CheckResult, error) {
	ctx, err := d.withTxOrigin(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, db, tx)
}

func (d Decorator) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Deliverer) (*valman.DeliverResult, error) {
	ctx, err := d.withTxOrigin(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) withTxOrigin(ctx valman.Context, tx valman.Tx) (valman.Context, error) {
	var conds []valman.Condition
	if otx, ok := tx.(OriginTx); ok {
		conds = otx.GetOrigin()
	}
	if len(conds) == 0 {
		if d.allowMissing {
			return ctx, nil
		}
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing origin")
	}
	for i, c := range conds {
		if err := c.Validate(); err != nil {
			return nil, errors.Field("Origin", err, "condition %d", i)
		}
	}
	return withOrigin(ctx, conds), nil
}
