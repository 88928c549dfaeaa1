package weavetest

import (
	"context"
	"fmt"

	"github.com/iov-one/valman"
)

// Auth is a mock implementing x.Authenticator interface. It
// authenticates all referenced conditions, both Signer and Signers are
// considered.
type Auth struct {
	// Signer is a shortcut for authenticating a single condition.
	Signer valman.Condition

	// Signers represents an authentication of multiple signers.
	Signers []valman.Condition
}

func (a *Auth) GetConditions(valman.Context) []valman.Condition {
	if a.Signer != nil {
		return append(append([]valman.Condition(nil), a.Signers...), a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx valman.Context, addr valman.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface that keeps
// the conditions in the context.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

func (a *CtxAuth) SetConditions(ctx valman.Context, conds ...valman.Condition) valman.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx valman.Context) []valman.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]valman.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []valman.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx valman.Context, addr valman.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
