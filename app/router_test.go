package app

import (
	"context"
	"testing"

	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/store"
	"github.com/iov-one/valman/weavetest"
	"github.com/stretchr/testify/assert"
)

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	register := &weavetest.Handler{}
	remove := &weavetest.Handler{DeliverErr: errors.ErrUnauthorized}
	r.Handle("validators/register", register)
	r.Handle("validators/remove", remove)

	ctx := context.Background()
	db := store.MemStore()

	cases := map[string]struct {
		path        string
		wantErr     *errors.Error
		wantHandler *weavetest.Handler
	}{
		"register":     {path: "validators/register", wantHandler: register},
		"remove error": {path: "validators/remove", wantErr: errors.ErrUnauthorized, wantHandler: remove},
		"unknown path": {path: "validators/unknown", wantErr: errors.ErrNotFound},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: tc.path}}
			var before int
			if tc.wantHandler != nil {
				before = tc.wantHandler.DeliverCallCount()
			}
			_, err := r.Deliver(ctx, db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantHandler != nil {
				assert.Equal(t, before+1, tc.wantHandler.DeliverCallCount())
			}
		})
	}

	_, err := r.Check(ctx, db, &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "validators/register"}})
	assert.NoError(t, err)
	assert.Equal(t, 1, register.CheckCallCount())
}

func TestRouterRegistration(t *testing.T) {
	r := NewRouter()
	r.Handle("sessionkeys/set", &weavetest.Handler{})
	assert.Panics(t, func() { r.Handle("sessionkeys/set", &weavetest.Handler{}) })
	assert.Panics(t, func() { r.Handle("session keys", &weavetest.Handler{}) })
}

func TestRouterMsgError(t *testing.T) {
	r := NewRouter()
	tx := &weavetest.Tx{Err: errors.ErrInput}
	_, err := r.Check(context.Background(), store.MemStore(), tx)
	assert.True(t, errors.ErrInput.Is(err))
}

