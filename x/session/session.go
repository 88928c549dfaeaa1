package session

import (
	"bytes"
	"strconv"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x/sessionkeys"
	"github.com/tendermint/tendermint/libs/common"
)

// Manager decides the validator set of every session.
type Manager interface {
	// NewSession returns the validator set of the session index, or nil
	// to keep the current one.
	NewSession(ctx valman.Context, db valman.KVStore, index uint32) ([]valman.ValidatorID, error)
	// EndSession is called before the next session is built.
	EndSession(ctx valman.Context, db valman.KVStore, index uint32)
	// StartSession is called once the session index is in force.
	StartSession(ctx valman.Context, db valman.KVStore, index uint32)
}

// KeySource returns the finality key of a validator.
type KeySource interface {
	FinalityKey(db valman.ReadOnlyKVStore, id valman.ValidatorID) (sessionkeys.RoleKey, error)
}

// Tag keys added to the block when a session starts.
const (
	TagSession      = "session"
	TagValidatorSet = "validator_set"
)

// Ticker starts a new session at every session boundary.
type Ticker struct {
	manager Manager
	keys    KeySource
	store   Store
}

var _ valman.Ticker = Ticker{}

// NewTicker returns a ticker asking manager for the validator sets.
func NewTicker(manager Manager, keys KeySource) Ticker {
	return Ticker{manager: manager, keys: keys}
}

// Tick starts a new session if the block height is a session boundary.
// It panics if the state cannot be read or written.
func (t Ticker) Tick(ctx valman.Context, db valman.CacheableKVStore) valman.TickResult {
	height, ok := valman.GetHeight(ctx)
	if !ok {
		panic("block height not in context")
	}
	conf, err := loadConf(db)
	if err != nil {
		panic(err)
	}
	if !conf.ShouldEndSession(height) {
		return valman.TickResult{}
	}
	tags, err := t.rotate(ctx, db, conf)
	if err != nil {
		panic(errors.Wrapf(err, "new session at height %d", height))
	}
	return valman.TickResult{Tags: tags}
}

func (t Ticker) rotate(ctx valman.Context, db valman.KVStore, conf Configuration) ([]common.KVPair, error) {
	state, err := t.store.Load(db)
	if err != nil {
		return nil, err
	}
	t.manager.EndSession(ctx, db, state.Index)

	index := state.Index + 1
	next, err := t.manager.NewSession(ctx, db, index)
	if err != nil {
		return nil, errors.Wrapf(err, "session %d", index)
	}
	ids := state.Validators()
	if next != nil {
		ids = next
	}
	if err := t.apply(ctx, db, conf, state, index, ids); err != nil {
		return nil, err
	}
	t.manager.StartSession(ctx, db, index)

	tags := []common.KVPair{
		{Key: []byte(TagSession), Value: []byte(strconv.FormatUint(uint64(index), 10))},
	}
	if next != nil {
		tags = append(tags, common.KVPair{Key: []byte(TagValidatorSet), Value: []byte("changed")})
	}
	return tags, nil
}

// apply makes ids the validator set of session index and records the
// tendermint updates needed to get there from the current state.
func (t Ticker) apply(ctx valman.Context, db valman.KVStore, conf Configuration, state *State, index uint32, ids []valman.ValidatorID) error {
	members, err := t.members(ctx, db, ids)
	if err != nil {
		return err
	}
	updates := diff(state.Members, members, conf.ValidatorPower)
	if err := valman.AppendValidatorUpdates(db, updates); err != nil {
		return errors.Wrap(err, "validator updates")
	}
	if len(updates) > 0 {
		valman.GetLogger(ctx).Info("Validator set updated",
			"module", "session",
			"session", index,
			"validators", len(members),
			"updates", len(updates))
	}
	return t.store.Save(db, &State{Index: index, Members: members})
}

func (t Ticker) members(ctx valman.Context, db valman.ReadOnlyKVStore, ids []valman.ValidatorID) ([]Member, error) {
	members := make([]Member, len(ids))
	for i, id := range ids {
		members[i] = Member{Validator: id}
		key, err := t.keys.FinalityKey(db, id)
		switch {
		case errors.ErrNotFound.Is(err):
			valman.GetLogger(ctx).Error("Validator without finality key",
				"module", "session",
				"validator", id.String())
		case err != nil:
			return nil, errors.Wrapf(err, "finality key of %s", id)
		default:
			members[i].KeyType = key.Type
			members[i].PubKey = key.Data
		}
	}
	return members, nil
}

// diff returns the updates turning the keys of prev into the keys of
// next. Keys no longer in use get zero power.
func diff(prev, next []Member, power int64) []valman.ValidatorUpdate {
	var updates []valman.ValidatorUpdate
	for _, m := range prev {
		if len(m.PubKey) > 0 && !hasKey(next, m) {
			updates = append(updates, valman.ValidatorUpdate{PubKeyType: m.KeyType, PubKey: m.PubKey, Power: 0})
		}
	}
	for _, m := range next {
		if len(m.PubKey) > 0 && !hasKey(prev, m) {
			updates = append(updates, valman.ValidatorUpdate{PubKeyType: m.KeyType, PubKey: m.PubKey, Power: power})
		}
	}
	return updates
}

func hasKey(members []Member, m Member) bool {
	for _, o := range members {
		if o.KeyType == m.KeyType && bytes.Equal(o.PubKey, m.PubKey) {
			return true
		}
	}
	return false
}
