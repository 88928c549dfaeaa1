/*
Package app links together the validator management extensions into a
single ABCI application.
*/
package app

import (
	"context"
	"path/filepath"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/app"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/store/iavl"
	"github.com/iov-one/valman/x"
	"github.com/iov-one/valman/x/origin"
	"github.com/iov-one/valman/x/session"
	"github.com/iov-one/valman/x/sessionkeys"
	"github.com/iov-one/valman/x/utils"
	"github.com/iov-one/valman/x/validators"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is returned by abci Info.
const Name = "valman"

// Authenticator trusts the origin carried by the transaction.
func Authenticator() x.Authenticator {
	return x.ChainAuth(origin.Authenticate{})
}

// Chain returns the decorators every transaction goes through.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		origin.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	)
}

// Extensions groups the components shared by the handlers, the ticker
// and the genesis initializers.
type Extensions struct {
	Auth       x.Authenticator
	Keys       *sessionkeys.Registry
	Sessions   session.Store
	Reconciler validators.Reconciler
	Controller validators.Controller
}

// NewExtensions wires the extensions together. The session store holds
// the active set read by the validators extension.
func NewExtensions() Extensions {
	var sessions session.Store
	return Extensions{
		Auth:       Authenticator(),
		Keys:       sessionkeys.NewRegistry(sessionkeys.DefaultCacheSize),
		Sessions:   sessions,
		Reconciler: validators.NewReconciler(sessions),
		Controller: validators.NewController(sessions),
	}
}

// Router registers the handlers of all extensions.
func (e Extensions) Router() *app.Router {
	r := app.NewRouter()
	validators.RegisterRoutes(r, e.Auth, e.Sessions, e.Keys)
	sessionkeys.RegisterRoutes(r, e.Auth, validators.IdentityMapping{}, e.Controller, e.Keys)
	return r
}

// QueryRouter exposes the state of all extensions.
func (e Extensions) QueryRouter() valman.QueryRouter {
	r := valman.NewQueryRouter()
	r.RegisterAll(
		validators.RegisterQuery,
		session.RegisterQuery,
		func(qr valman.QueryRouter) { sessionkeys.RegisterQuery(qr, e.Keys) },
	)
	return r
}

// Initializer loads the genesis state. Keys come first as the genesis
// session looks them up.
func (e Extensions) Initializer() valman.Initializer {
	return app.ChainInitializers(
		&sessionkeys.Initializer{Registry: e.Keys},
		validators.Initializer{Mapping: validators.IdentityMapping{}},
		session.Initializer{Manager: e.Reconciler, Keys: e.Keys},
	)
}

// Ticker rotates sessions.
func (e Extensions) Ticker() valman.Ticker {
	return session.NewTicker(e.Reconciler, e.Keys)
}

// Stack wires the router with the decorator chain.
func (e Extensions) Stack() valman.Handler {
	return Chain().WithHandler(e.Router())
}

// Application constructs the ABCI application on top of kv.
func Application(kv valman.CommitKVStore, logger log.Logger, debug bool) app.BaseApp {
	ext := NewExtensions()
	ctx := valman.WithLogger(context.Background(), logger)
	store := app.NewStoreApp(Name, kv, ext.QueryRouter(), ctx).
		WithInit(ext.Initializer()).
		WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, ext.Stack(), ext.Ticker(), debug)
}

// GenerateApp is used to create a stub for server/start.go command.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	kv, err := CommitKVStore(filepath.Join(home, "abci"))
	if err != nil {
		return nil, err
	}
	return Application(kv, logger, debug), nil
}

// CommitKVStore returns a store persisting to dir, or an in memory one
// if dir is empty.
func CommitKVStore(dir string) (valman.CommitKVStore, error) {
	if dir == "" {
		return iavl.NewMemCommitStore(), nil
	}
	path, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database path %q", dir)
	}
	return iavl.NewCommitStore(path), nil
}
