package validators

import (
	"strings"
	"testing"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/weavetest"
	"github.com/iov-one/valman/weavetest/assert"
	"github.com/iov-one/valman/x/sessionkeys"
)

func TestRegisterValidators(t *testing.T) {
	ready := newIDs(3)
	notReady := weavetest.NewValidatorID()
	queued := weavetest.NewValidatorID()

	cases := map[string]struct {
		signer      func(*fixture) valman.Condition
		msg         valman.Msg
		wantErr     *errors.Error
		wantPending []valman.ValidatorID
	}{
		"register two validators": {
			msg:         NewRegisterValidatorsMsg(ready[0], ready[1]),
			wantPending: []valman.ValidatorID{queued, ready[0], ready[1]},
		},
		"signer is not an administrator": {
			signer:      func(*fixture) valman.Condition { return weavetest.NewCondition() },
			msg:         NewRegisterValidatorsMsg(ready[0]),
			wantErr:     errors.ErrUnauthorized,
			wantPending: []valman.ValidatorID{queued},
		},
		"already queued": {
			msg:         NewRegisterValidatorsMsg(ready[0], queued),
			wantErr:     ErrAlreadyQueued,
			wantPending: []valman.ValidatorID{queued},
		},
		"duplicated in one message": {
			msg:         NewRegisterValidatorsMsg(ready[0], ready[1], ready[0]),
			wantErr:     ErrAlreadyQueued,
			wantPending: []valman.ValidatorID{queued},
		},
		"one validator without keys fails the whole message": {
			msg:         NewRegisterValidatorsMsg(ready[0], notReady, ready[2]),
			wantErr:     ErrKeyNotReady,
			wantPending: []valman.ValidatorID{queued},
		},
		"empty message": {
			msg:         &RegisterValidatorsMsg{},
			wantErr:     errors.ErrEmpty,
			wantPending: []valman.ValidatorID{queued},
		},
		"invalid validator id": {
			msg:         NewRegisterValidatorsMsg(valman.ValidatorID{1, 2}),
			wantErr:     errors.ErrInput,
			wantPending: []valman.ValidatorID{queued},
		},
		"unexpected message": {
			msg:         &RemoveValidatorMsg{Validator: ready[0]},
			wantErr:     errors.ErrMsg,
			wantPending: []valman.ValidatorID{queued},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, DefaultConfiguration())
			f.withKeys(t, ready...)
			f.withKeys(t, queued)
			assert.Nil(t, Queues{}.Append(f.db, Additions, queued))

			signer := f.admin
			if tc.signer != nil {
				signer = tc.signer(f)
			}
			h := NewRegisterValidatorsHandler(NewAdminGate(f.auth), NewKeyReadinessGate(f.keys))
			res, err := deliverWith(f, h, signer, tc.msg)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantPending, f.pending(t, Additions))

			if tc.wantErr == nil {
				assert.Equal(t, TagRegistered, string(res.Tags[0].Key))
				assert.Equal(t, ready[0].String()+","+ready[1].String(), string(res.Tags[0].Value))
			}
		})
	}
}

func TestRemoveValidator(t *testing.T) {
	v := newIDs(4)

	cases := map[string]struct {
		active      []valman.ValidatorID
		queued      []valman.ValidatorID
		additions   []valman.ValidatorID
		min         uint32
		stranger    bool
		remove      valman.ValidatorID
		wantErr     *errors.Error
		wantPending []valman.ValidatorID
	}{
		"remove one of three": {
			active:      v[:3],
			min:         2,
			remove:      v[1],
			wantPending: []valman.ValidatorID{v[1]},
		},
		"not an administrator": {
			active:   v[:3],
			min:      2,
			stranger: true,
			remove:   v[1],
			wantErr:  errors.ErrUnauthorized,
		},
		"not a current validator": {
			active:  v[:3],
			min:     2,
			remove:  v[3],
			wantErr: ErrNotCurrentValidator,
		},
		"below the minimum": {
			active:  v[:2],
			min:     2,
			remove:  v[1],
			wantErr: ErrTooFewValidators,
		},
		"below the minimum counting queued removals": {
			active:      v[:3],
			queued:      []valman.ValidatorID{v[0]},
			min:         2,
			remove:      v[1],
			wantErr:     ErrTooFewValidators,
			wantPending: []valman.ValidatorID{v[0]},
		},
		"queued additions allow a removal": {
			active:      v[:2],
			additions:   []valman.ValidatorID{v[3]},
			min:         2,
			remove:      v[1],
			wantPending: []valman.ValidatorID{v[1]},
		},
		"already queued": {
			active:      v[:4],
			queued:      []valman.ValidatorID{v[1]},
			min:         1,
			remove:      v[1],
			wantErr:     ErrAlreadyQueued,
			wantPending: []valman.ValidatorID{v[1]},
		},
		"minimum is checked before the queue": {
			active:      v[:2],
			queued:      []valman.ValidatorID{v[1]},
			min:         2,
			remove:      v[1],
			wantErr:     ErrTooFewValidators,
			wantPending: []valman.ValidatorID{v[1]},
		},
		"invalid id": {
			active:  v[:3],
			min:     2,
			remove:  valman.ValidatorID{1},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			conf := DefaultConfiguration()
			conf.MinAuthorities = tc.min
			f := newFixture(t, conf, tc.active...)
			assert.Nil(t, Queues{}.Append(f.db, Removals, tc.queued...))
			assert.Nil(t, Queues{}.Append(f.db, Additions, tc.additions...))

			signer := f.admin
			if tc.stranger {
				signer = weavetest.NewCondition()
			}
			h := NewRemoveValidatorHandler(NewAdminGate(f.auth), f.active)
			res, err := deliverWith(f, h, signer, &RemoveValidatorMsg{Validator: tc.remove})
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantPending, f.pending(t, Removals))
			if tc.wantErr == nil {
				assert.Equal(t, TagRemoved, string(res.Tags[0].Key))
				assert.Equal(t, tc.remove.String(), string(res.Tags[0].Value))
			}
		})
	}
}

func TestReadinessGate(t *testing.T) {
	full, _, err := sessionkeys.GenerateBundle(randReader())
	assert.Nil(t, err)
	aura, _ := full.Key(sessionkeys.RoleAura)
	gran, _ := full.Key(sessionkeys.RoleGran)

	cases := map[string]struct {
		bundle    *sessionkeys.KeyBundle
		wantReady bool
	}{
		"complete bundle": {
			bundle:    full,
			wantReady: true,
		},
		"no bundle": {
			bundle:    nil,
			wantReady: false,
		},
		"missing finality key": {
			bundle:    &sessionkeys.KeyBundle{Keys: []sessionkeys.RoleKey{aura}},
			wantReady: false,
		},
		"missing authoring key": {
			bundle:    &sessionkeys.KeyBundle{Keys: []sessionkeys.RoleKey{gran}},
			wantReady: false,
		},
		"wrong key type": {
			bundle: &sessionkeys.KeyBundle{Keys: []sessionkeys.RoleKey{
				aura,
				{Role: sessionkeys.RoleGran, Type: "sr25519", Data: gran.Data},
			}},
			wantReady: false,
		},
		"truncated key": {
			bundle: &sessionkeys.KeyBundle{Keys: []sessionkeys.RoleKey{
				aura,
				{Role: sessionkeys.RoleGran, Type: "ed25519", Data: gran.Data[:16]},
			}},
			wantReady: false,
		},
		"extra roles are accepted": {
			bundle: &sessionkeys.KeyBundle{Keys: []sessionkeys.RoleKey{
				aura,
				gran,
				{Role: "imon", Type: "sr25519", Data: gran.Data},
			}},
			wantReady: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, DefaultConfiguration())
			id := weavetest.NewValidatorID()
			if tc.bundle != nil {
				assert.Nil(t, f.keys.Save(f.db, id, tc.bundle))
			}
			gate := NewKeyReadinessGate(f.keys)
			ok, err := gate.IsReady(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantReady, ok)

			err = gate.Check(f.db, id)
			if tc.wantReady {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, ErrKeyNotReady, err)
				if !strings.Contains(err.Error(), id.String()) {
					t.Fatalf("error does not name the validator: %s", err)
				}
			}
		})
	}
}

func TestReadinessGateMalformedBundle(t *testing.T) {
	f := newFixture(t, DefaultConfiguration())
	id := weavetest.NewValidatorID()
	assert.Nil(t, f.db.Set(append([]byte("skeys:"), id...), []byte{0xff, 0xff, 0xff}))

	ok, err := NewKeyReadinessGate(f.keys).IsReady(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}
