package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router dispatches each transaction to the Handler registered for the
// path of its message.
type Router struct {
	routes map[string]valman.Handler
}

var _ valman.Registry = (*Router)(nil)
var _ valman.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]valman.Handler),
	}
}

// Handle adds a new Handler for the given path. It panics if a handler
// for the path is already registered or the path is malformed.
func (r *Router) Handle(path string, h valman.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the handler for the message of tx.
func (r *Router) handler(tx valman.Tx) (valman.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	h, ok := r.routes[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", msg.Path())
	}
	return h, nil
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}
