package sessionkeys

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x"
	"github.com/tendermint/tendermint/libs/common"
)

// OwnerMapping converts an account address into the validator id it
// controls.
type OwnerMapping interface {
	Convert(valman.Address) (valman.ValidatorID, bool)
}

// UsageChecker reports whether a validator is active or about to become
// active.
type UsageChecker interface {
	InUse(db valman.ReadOnlyKVStore, id valman.ValidatorID) (bool, error)
}

// RegisterRoutes registers the handlers of this extension.
func RegisterRoutes(r valman.Registry, auth x.Authenticator, owners OwnerMapping, usage UsageChecker, reg *Registry) {
	r.Handle(pathSetKeys, NewSetKeysHandler(auth, owners, reg))
	r.Handle(pathPurgeKeys, NewPurgeKeysHandler(auth, owners, usage, reg))
}

// RegisterQuery exposes bundles under "/sessionkeys", queried by
// validator id.
func RegisterQuery(qr valman.QueryRouter, reg *Registry) {
	qr.Register("/sessionkeys", valman.QueryHandlerFunc(func(db valman.ReadOnlyKVStore, mod string, data []byte) ([]valman.Model, error) {
		if mod != valman.KeyQueryMod {
			return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
		}
		id := valman.ValidatorID(data)
		b, err := reg.Keys(db, id)
		if err != nil || b == nil {
			return nil, err
		}
		raw, err := b.Marshal()
		if err != nil {
			return nil, errors.Wrap(errors.ErrModel, err.Error())
		}
		return []valman.Model{valman.Pair(id, raw)}, nil
	}))
}

// isOwner returns true if any signer of the transaction controls id.
func isOwner(ctx valman.Context, auth x.Authenticator, owners OwnerMapping, id valman.ValidatorID) bool {
	for _, c := range auth.GetConditions(ctx) {
		if owned, ok := owners.Convert(c.Address()); ok && owned.Equals(id) {
			return true
		}
	}
	return false
}

// SetKeysHandler stores the key bundle of a validator.
type SetKeysHandler struct {
	auth   x.Authenticator
	owners OwnerMapping
	reg    *Registry
}

var _ valman.Handler = SetKeysHandler{}

func NewSetKeysHandler(auth x.Authenticator, owners OwnerMapping, reg *Registry) SetKeysHandler {
	return SetKeysHandler{auth: auth, owners: owners, reg: reg}
}

func (h SetKeysHandler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &valman.CheckResult{}, nil
}

func (h SetKeysHandler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.reg.Save(db, msg.Validator, &msg.Keys); err != nil {
		return nil, errors.Wrap(err, "save keys")
	}
	return &valman.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("keys_set"), Value: []byte(msg.Validator.String())},
		},
	}, nil
}

func (h SetKeysHandler) validate(ctx valman.Context, tx valman.Tx) (*SetKeysMsg, error) {
	rmsg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	msg, ok := rmsg.(*SetKeysMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, rmsg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckComplete(&msg.Keys); err != nil {
		return nil, errors.Field("Keys", err, "incomplete bundle")
	}
	if !isOwner(ctx, h.auth, h.owners, msg.Validator) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "not the owner of %s", msg.Validator)
	}
	return msg, nil
}

// PurgeKeysHandler removes the key bundle of a validator that is not in
// use.
type PurgeKeysHandler struct {
	auth   x.Authenticator
	owners OwnerMapping
	usage  UsageChecker
	reg    *Registry
}

var _ valman.Handler = PurgeKeysHandler{}

func NewPurgeKeysHandler(auth x.Authenticator, owners OwnerMapping, usage UsageChecker, reg *Registry) PurgeKeysHandler {
	return PurgeKeysHandler{auth: auth, owners: owners, usage: usage, reg: reg}
}

func (h PurgeKeysHandler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &valman.CheckResult{}, nil
}

func (h PurgeKeysHandler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.reg.Delete(db, msg.Validator); err != nil {
		return nil, err
	}
	return &valman.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("keys_purged"), Value: []byte(msg.Validator.String())},
		},
	}, nil
}

func (h PurgeKeysHandler) validate(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*PurgeKeysMsg, error) {
	rmsg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	msg, ok := rmsg.(*PurgeKeysMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, rmsg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !isOwner(ctx, h.auth, h.owners, msg.Validator) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "not the owner of %s", msg.Validator)
	}
	inUse, err := h.usage.InUse(db, msg.Validator)
	if err != nil {
		return nil, errors.Wrap(err, "usage")
	}
	if inUse {
		return nil, errors.Wrapf(errors.ErrState, "validator %s is in use", msg.Validator)
	}
	return msg, nil
}
