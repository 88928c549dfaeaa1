package validators

import (
	"strings"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x"
	"github.com/tendermint/tendermint/libs/common"
)

// Tag keys of the notifications emitted by the handlers.
const (
	TagRegistered = "validators_registered"
	TagRemoved    = "validator_removed"
)

// RegisterRoutes registers the handlers of this extension.
func RegisterRoutes(r valman.Registry, auth x.Authenticator, active ActiveSetReader, keys KeyLookup) {
	gate := NewAdminGate(auth)
	r.Handle(pathRegister, NewRegisterValidatorsHandler(gate, NewKeyReadinessGate(keys)))
	r.Handle(pathRemove, NewRemoveValidatorHandler(gate, active))
}

// RegisterValidatorsHandler queues validators for addition. A message
// is handled as a whole: either all validators are queued or none.
type RegisterValidatorsHandler struct {
	gate   AdminGate
	ready  KeyReadinessGate
	queues Queues
}

var _ valman.Handler = RegisterValidatorsHandler{}

func NewRegisterValidatorsHandler(gate AdminGate, ready KeyReadinessGate) RegisterValidatorsHandler {
	return RegisterValidatorsHandler{gate: gate, ready: ready}
}

func (h RegisterValidatorsHandler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &valman.CheckResult{}, nil
}

func (h RegisterValidatorsHandler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	ids, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.queues.Append(db, Additions, ids...); err != nil {
		return nil, errors.Wrap(err, "queue additions")
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return &valman.DeliverResult{
		Log: "validators registered",
		Tags: []common.KVPair{
			{Key: []byte(TagRegistered), Value: []byte(strings.Join(names, ","))},
		},
	}, nil
}

// validate returns the validators to queue, in submission order.
func (h RegisterValidatorsHandler) validate(ctx valman.Context, db valman.KVStore, tx valman.Tx) ([]valman.ValidatorID, error) {
	rmsg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	msg, ok := rmsg.(*RegisterValidatorsMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, rmsg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := h.gate.Authorize(ctx, db); err != nil {
		return nil, err
	}

	queued, err := h.queues.Load(db, Additions)
	if err != nil {
		return nil, err
	}
	ids := msg.IDs()
	for i, id := range ids {
		if valman.ContainsValidator(queued, id) || valman.ContainsValidator(ids[:i], id) {
			return nil, errors.Wrapf(ErrAlreadyQueued, "%s", id)
		}
		if err := h.ready.Check(db, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// RemoveValidatorHandler queues an active validator for removal.
type RemoveValidatorHandler struct {
	gate      AdminGate
	active    ActiveSetReader
	queues    Queues
	invariant InvariantChecker
}

var _ valman.Handler = RemoveValidatorHandler{}

func NewRemoveValidatorHandler(gate AdminGate, active ActiveSetReader) RemoveValidatorHandler {
	return RemoveValidatorHandler{gate: gate, active: active}
}

func (h RemoveValidatorHandler) Check(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &valman.CheckResult{}, nil
}

func (h RemoveValidatorHandler) Deliver(ctx valman.Context, db valman.KVStore, tx valman.Tx) (*valman.DeliverResult, error) {
	id, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.queues.Append(db, Removals, id); err != nil {
		return nil, errors.Wrap(err, "queue removal")
	}
	return &valman.DeliverResult{
		Log: "validator removed",
		Tags: []common.KVPair{
			{Key: []byte(TagRemoved), Value: []byte(id.String())},
		},
	}, nil
}

func (h RemoveValidatorHandler) validate(ctx valman.Context, db valman.KVStore, tx valman.Tx) (valman.ValidatorID, error) {
	rmsg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	msg, ok := rmsg.(*RemoveValidatorMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, rmsg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := h.gate.Authorize(ctx, db); err != nil {
		return nil, err
	}

	active, err := h.active.ActiveSet(db)
	if err != nil {
		return nil, errors.Wrap(err, "active set")
	}
	if !valman.ContainsValidator(active, msg.Validator) {
		return nil, errors.Wrapf(ErrNotCurrentValidator, "%s", msg.Validator)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if err := h.invariant.CheckRemoval(db, conf, active); err != nil {
		return nil, err
	}
	queued, err := h.queues.Contains(db, Removals, msg.Validator)
	if err != nil {
		return nil, err
	}
	if queued {
		return nil, errors.Wrapf(ErrAlreadyQueued, "%s", msg.Validator)
	}
	return msg.Validator, nil
}
