package x

import (
	"github.com/iov-one/valman"
)

// Authenticator extracts authentication info from the context. It is
// passed into handler constructors, so that another authentication
// system can be plugged in.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled.
	GetConditions(valman.Context) []valman.Condition
	// HasAddress checks if any condition matches this address.
	HasAddress(valman.Context, valman.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators.
func (m MultiAuth) GetConditions(ctx valman.Context) []valman.Condition {
	var res []valman.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !hasCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator supports this address.
func (m MultiAuth) HasAddress(ctx valman.Context, addr valman.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses returns the addresses of all fulfilled conditions.
func GetAddresses(ctx valman.Context, auth Authenticator) []valman.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]valman.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// MainSigner returns the first condition if any, otherwise nil
func MainSigner(ctx valman.Context, auth Authenticator) valman.Condition {
	conds := auth.GetConditions(ctx)
	if len(conds) == 0 {
		return nil
	}
	return conds[0]
}

// HasAnyAddress returns true if at least one of the addresses is
// authorized in the context.
func HasAnyAddress(ctx valman.Context, auth Authenticator, addrs []valman.Address) bool {
	for _, a := range addrs {
		if auth.HasAddress(ctx, a) {
			return true
		}
	}
	return false
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx valman.Context, auth Authenticator, required []valman.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

func hasCondition(conds []valman.Condition, c valman.Condition) bool {
	for _, p := range conds {
		if p.Equals(c) {
			return true
		}
	}
	return false
}
