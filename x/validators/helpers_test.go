package validators

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/app"
	"github.com/iov-one/valman/gconf"
	"github.com/iov-one/valman/store"
	"github.com/iov-one/valman/weavetest"
	"github.com/iov-one/valman/weavetest/assert"
	"github.com/iov-one/valman/x/sessionkeys"
)

// activeSet keeps the current validator set in the store, the way the
// session extension does.
type activeSet struct{}

var activeSetKey = []byte("_test:active")

func (activeSet) ActiveSet(db valman.ReadOnlyKVStore) ([]valman.ValidatorID, error) {
	raw, err := db.Get(activeSetKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var q Queue
	if err := q.Unmarshal(raw); err != nil {
		return nil, err
	}
	return q.IDs(), nil
}

func (activeSet) set(t testing.TB, db valman.KVStore, ids []valman.ValidatorID) {
	t.Helper()
	if len(ids) == 0 {
		assert.Nil(t, db.Delete(activeSetKey))
		return
	}
	raw, err := queueOf(ids).Marshal()
	assert.Nil(t, err)
	assert.Nil(t, db.Set(activeSetKey, raw))
}

// fixture is a store with a configured extension, an administrator and
// a router with all handlers registered.
type fixture struct {
	db     valman.CacheableKVStore
	auth   *weavetest.CtxAuth
	admin  valman.Condition
	keys   *sessionkeys.Registry
	active activeSet
	router *app.Router
	rec    Reconciler
}

func newFixture(t testing.TB, conf Configuration, active ...valman.ValidatorID) *fixture {
	t.Helper()
	f := &fixture{
		db:     store.MemStore(),
		auth:   &weavetest.CtxAuth{Key: "auth"},
		admin:  weavetest.NewCondition(),
		keys:   sessionkeys.NewRegistry(16),
		router: app.NewRouter(),
	}
	assert.Nil(t, gconf.Save(f.db, confPkg, &conf))
	assert.Nil(t, saveAdmins(f.db, []valman.Address{f.admin.Address()}))
	f.active.set(t, f.db, active)
	RegisterRoutes(f.router, f.auth, f.active, f.keys)
	f.rec = NewReconciler(f.active)
	return f
}

// withKeys registers a complete key bundle for every id.
func (f *fixture) withKeys(t testing.TB, ids ...valman.ValidatorID) {
	t.Helper()
	for _, id := range ids {
		b, _, err := sessionkeys.GenerateBundle(rand.Reader)
		assert.Nil(t, err)
		assert.Nil(t, f.keys.Save(f.db, id, b))
	}
}

// deliver runs msg through the router signed by signer.
func (f *fixture) deliver(signer valman.Condition, msg valman.Msg) (*valman.DeliverResult, error) {
	return deliverWith(f, f.router, signer, msg)
}

func (f *fixture) register(ids ...valman.ValidatorID) error {
	_, err := f.deliver(f.admin, NewRegisterValidatorsMsg(ids...))
	return err
}

func (f *fixture) remove(id valman.ValidatorID) error {
	_, err := f.deliver(f.admin, &RemoveValidatorMsg{Validator: id})
	return err
}

// reconcile runs the session transition the way the session extension
// does and returns the set in force afterwards.
func (f *fixture) reconcile(t testing.TB, index uint32) []valman.ValidatorID {
	t.Helper()
	ctx := context.Background()
	if index > 0 {
		f.rec.EndSession(ctx, f.db, index-1)
	}
	next, err := f.rec.NewSession(ctx, f.db, index)
	assert.Nil(t, err)
	if next != nil {
		f.active.set(t, f.db, next)
	}
	f.rec.StartSession(ctx, f.db, index)
	set, err := f.active.ActiveSet(f.db)
	assert.Nil(t, err)
	return set
}

func (f *fixture) pending(t testing.TB, kind QueueKind) []valman.ValidatorID {
	t.Helper()
	ids, err := Queues{}.Load(f.db, kind)
	assert.Nil(t, err)
	return ids
}

func newIDs(n int) []valman.ValidatorID {
	ids := make([]valman.ValidatorID, n)
	for i := range ids {
		ids[i] = weavetest.NewValidatorID()
	}
	return ids
}

// deliverWith runs msg through h signed by signer and writes the changes
// only on success.
func deliverWith(f *fixture, h valman.Handler, signer valman.Condition, msg valman.Msg) (*valman.DeliverResult, error) {
	ctx := f.auth.SetConditions(context.Background(), signer)
	cache := f.db.CacheWrap()
	tx := &weavetest.Tx{Msg: msg}
	if _, err := h.Check(ctx, cache, tx); err != nil {
		cache.Discard()
		return nil, err
	}
	res, err := h.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	return res, cache.Write()
}

func randReader() io.Reader {
	return rand.Reader
}
