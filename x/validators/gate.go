package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x"
)

// Admins is the list of accounts allowed to change the validator set.
type Admins struct {
	Addresses []AdminEntry
}

// AdminEntry is a single administrator account.
type AdminEntry struct {
	Address valman.Address
}

var adminsKey = []byte("_v:admins")

func (a *Admins) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

func (a *Admins) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, a); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// AdminGate authorizes changes of the validator set. A transaction is
// authorized if any of its signers is one of the administrators saved
// at genesis.
type AdminGate struct {
	auth x.Authenticator
}

// NewAdminGate returns a gate using auth to find the transaction signers.
func NewAdminGate(auth x.Authenticator) AdminGate {
	return AdminGate{auth: auth}
}

// Authorize returns ErrUnauthorized unless an administrator signed.
func (g AdminGate) Authorize(ctx valman.Context, db valman.ReadOnlyKVStore) error {
	admins, err := loadAdmins(db)
	if err != nil {
		return err
	}
	if !x.HasAnyAddress(ctx, g.auth, admins) {
		return errors.Wrap(errors.ErrUnauthorized, "validator administrator signature required")
	}
	return nil
}

func loadAdmins(db valman.ReadOnlyKVStore) ([]valman.Address, error) {
	raw, err := db.Get(adminsKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return nil, nil
	}
	var a Admins
	if err := a.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "admins")
	}
	addrs := make([]valman.Address, len(a.Addresses))
	for i, e := range a.Addresses {
		addrs[i] = e.Address
	}
	return addrs, nil
}

func saveAdmins(db valman.KVStore, addrs []valman.Address) error {
	if len(addrs) == 0 {
		return db.Delete(adminsKey)
	}
	a := Admins{Addresses: make([]AdminEntry, len(addrs))}
	for i, addr := range addrs {
		if err := addr.Validate(); err != nil {
			return errors.Field("Admins", err, "admin %d", i)
		}
		a.Addresses[i] = AdminEntry{Address: addr}
	}
	raw, err := a.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return db.Set(adminsKey, raw)
}
