package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/gconf"
	"github.com/iov-one/valman/store"
	"github.com/iov-one/valman/weavetest"
	"github.com/iov-one/valman/weavetest/assert"
	"github.com/iov-one/valman/x/sessionkeys"
	"github.com/iov-one/valman/x/validators"
)

// scripted returns a fixed validator set per session and records the
// session callbacks.
type scripted struct {
	sets    map[uint32][]valman.ValidatorID
	ended   []uint32
	started []uint32
}

func (s *scripted) NewSession(ctx valman.Context, db valman.KVStore, index uint32) ([]valman.ValidatorID, error) {
	return s.sets[index], nil
}

func (s *scripted) EndSession(ctx valman.Context, db valman.KVStore, index uint32) {
	s.ended = append(s.ended, index)
}

func (s *scripted) StartSession(ctx valman.Context, db valman.KVStore, index uint32) {
	s.started = append(s.started, index)
}

func newBundle(t testing.TB, reg *sessionkeys.Registry, db valman.KVStore, id valman.ValidatorID) sessionkeys.RoleKey {
	t.Helper()
	b, _, err := sessionkeys.GenerateBundle(rand.Reader)
	assert.Nil(t, err)
	assert.Nil(t, reg.Save(db, id, b))
	k, ok := b.Key(sessionkeys.RoleGran)
	if !ok {
		t.Fatal("generated bundle without finality key")
	}
	return k
}

func update(k sessionkeys.RoleKey, power int64) valman.ValidatorUpdate {
	return valman.ValidatorUpdate{PubKeyType: k.Type, PubKey: k.Data, Power: power}
}

func tick(t testing.TB, ticker Ticker, db valman.CacheableKVStore, height int64) map[string]string {
	t.Helper()
	ctx := valman.WithHeight(context.Background(), height)
	res := ticker.Tick(ctx, db)
	tags := make(map[string]string)
	for _, kv := range res.Tags {
		tags[string(kv.Key)] = string(kv.Value)
	}
	return tags
}

func takeUpdates(t testing.TB, db valman.KVStore) []valman.ValidatorUpdate {
	t.Helper()
	updates, err := valman.TakeValidatorUpdates(db)
	assert.Nil(t, err)
	return updates
}

func TestTickerRotation(t *testing.T) {
	db := store.MemStore()
	conf := Configuration{Period: 5, ValidatorPower: 10}
	assert.Nil(t, gconf.Save(db, confPkg, &conf))

	reg := sessionkeys.NewRegistry(8)
	a, b, c := weavetest.NewValidatorID(), weavetest.NewValidatorID(), weavetest.NewValidatorID()
	keyA := newBundle(t, reg, db, a)
	keyB := newBundle(t, reg, db, b)
	keyC := newBundle(t, reg, db, c)

	m := &scripted{sets: map[uint32][]valman.ValidatorID{
		1: {a, b},
		2: {b, c},
	}}
	ticker := NewTicker(m, reg)

	tags := tick(t, ticker, db, 5)
	assert.Equal(t, map[string]string{TagSession: "1", TagValidatorSet: "changed"}, tags)
	assert.Equal(t, []valman.ValidatorUpdate{update(keyA, 10), update(keyB, 10)}, takeUpdates(t, db))

	tags = tick(t, ticker, db, 7)
	assert.Equal(t, 0, len(tags))
	assert.Equal(t, 0, len(takeUpdates(t, db)))

	tags = tick(t, ticker, db, 10)
	assert.Equal(t, map[string]string{TagSession: "2", TagValidatorSet: "changed"}, tags)
	assert.Equal(t, []valman.ValidatorUpdate{update(keyA, 0), update(keyC, 10)}, takeUpdates(t, db))

	active, err := Store{}.ActiveSet(db)
	assert.Nil(t, err)
	assert.Equal(t, []valman.ValidatorID{b, c}, active)

	// b rotates its keys, the set itself stays
	newKeyB := newBundle(t, reg, db, b)
	tags = tick(t, ticker, db, 15)
	assert.Equal(t, map[string]string{TagSession: "3"}, tags)
	assert.Equal(t, []valman.ValidatorUpdate{update(keyB, 0), update(newKeyB, 10)}, takeUpdates(t, db))

	// nothing changes at all
	tick(t, ticker, db, 20)
	assert.Equal(t, 0, len(takeUpdates(t, db)))

	state, err := Store{}.Load(db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(4), state.Index)
	assert.Equal(t, []valman.ValidatorID{b, c}, state.Validators())
	assert.Equal(t, []uint32{0, 1, 2, 3}, m.ended)
	assert.Equal(t, []uint32{1, 2, 3, 4}, m.started)
}

func TestTickerMissingKey(t *testing.T) {
	db := store.MemStore()
	conf := Configuration{Period: 1, ValidatorPower: 3}
	assert.Nil(t, gconf.Save(db, confPkg, &conf))

	reg := sessionkeys.NewRegistry(8)
	a, b := weavetest.NewValidatorID(), weavetest.NewValidatorID()
	keyA := newBundle(t, reg, db, a)

	m := &scripted{sets: map[uint32][]valman.ValidatorID{1: {a, b}}}
	tick(t, NewTicker(m, reg), db, 1)

	assert.Equal(t, []valman.ValidatorUpdate{update(keyA, 3)}, takeUpdates(t, db))
	state, err := Store{}.Load(db)
	assert.Nil(t, err)
	assert.Equal(t, []valman.ValidatorID{a, b}, state.Validators())
	assert.Equal(t, 0, len(state.Members[1].PubKey))
}

func TestTickerPanicsWithoutConfiguration(t *testing.T) {
	db := store.MemStore()
	ticker := NewTicker(&scripted{}, sessionkeys.NewRegistry(1))
	assert.Panics(t, func() { tick(t, ticker, db, 1) })
}

func TestStateValidate(t *testing.T) {
	a := weavetest.NewValidatorID()
	cases := map[string]struct {
		state     State
		wantField string
		wantErr   *errors.Error
	}{
		"empty":     {state: State{}},
		"valid":     {state: State{Index: 3, Members: []Member{{Validator: a}}}},
		"duplicate": {state: State{Members: []Member{{Validator: a}, {Validator: a}}}, wantField: "Members.1", wantErr: errors.ErrDuplicate},
		"bad id":    {state: State{Members: []Member{{Validator: valman.ValidatorID{1}}}}, wantField: "Members.0", wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.state.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.FieldError(t, err, tc.wantField, tc.wantErr)
		})
	}
}

func TestGenesisSession(t *testing.T) {
	db := store.MemStore()
	reg := sessionkeys.NewRegistry(8)
	accounts := []valman.Address{weavetest.NewCondition().Address(), weavetest.NewCondition().Address()}
	var keys []sessionkeys.RoleKey
	for _, acc := range accounts {
		keys = append(keys, newBundle(t, reg, db, valman.ValidatorID(acc)))
	}

	raw, err := json.Marshal(validators.GenesisState{InitialValidators: accounts})
	assert.Nil(t, err)
	opts := valman.Options{"validators": raw}
	assert.Nil(t, validators.Initializer{}.FromGenesis(opts, valman.GenesisParams{}, db))

	var st Store
	genesis := Initializer{Manager: validators.NewReconciler(st), Keys: reg}
	assert.Nil(t, genesis.FromGenesis(opts, valman.GenesisParams{}, db))

	state, err := st.Load(db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), state.Index)
	assert.Equal(t, []valman.ValidatorID{valman.ValidatorID(accounts[0]), valman.ValidatorID(accounts[1])}, state.Validators())

	power := DefaultConfiguration().ValidatorPower
	assert.Equal(t, []valman.ValidatorUpdate{update(keys[0], power), update(keys[1], power)}, takeUpdates(t, db))

	// the additions queue was drained by the genesis session
	pending, err := validators.NewController(st).PendingAdditions(db)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(pending))
}

func TestGenesisRequiresManager(t *testing.T) {
	err := Initializer{}.FromGenesis(valman.Options{}, valman.GenesisParams{}, store.MemStore())
	assert.IsErr(t, errors.ErrHuman, err)
}

func TestQuerySession(t *testing.T) {
	db := store.MemStore()
	a := weavetest.NewValidatorID()
	assert.Nil(t, Store{}.Save(db, &State{Index: 2, Members: []Member{{Validator: a}}}))

	qr := valman.NewQueryRouter()
	RegisterQuery(qr)
	models, err := qr.Handler("/session").Query(db, "", nil)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(models))

	var got State
	assert.Nil(t, got.Unmarshal(models[0].Value))
	assert.Equal(t, uint32(2), got.Index)
	assert.Equal(t, []valman.ValidatorID{a}, got.Validators())
}
