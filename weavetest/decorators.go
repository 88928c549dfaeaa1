package weavetest

import "github.com/iov-one/valman"

// Decorator is a mock implementation of the valman.Decorator interface.
//
// Set CheckErr or DeliverErr to return an error before the wrapped
// handler is called. Every call is counted, regardless of its result.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ valman.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Checker) (*valman.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx, next valman.Deliverer) (*valman.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls h through d.
func Decorate(h valman.Handler, d valman.Decorator) valman.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn valman.Handler
	dc valman.Decorator
}

var _ valman.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
