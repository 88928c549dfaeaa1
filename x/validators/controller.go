package validators

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// Controller gives read access to the pending changes.
type Controller struct {
	active ActiveSetReader
	queues Queues
}

// NewController returns a controller reading the current set from
// active.
func NewController(active ActiveSetReader) Controller {
	return Controller{active: active}
}

// PendingAdditions returns the validators queued for addition.
func (c Controller) PendingAdditions(db valman.ReadOnlyKVStore) ([]valman.ValidatorID, error) {
	return c.queues.Load(db, Additions)
}

// PendingRemovals returns the validators queued for removal.
func (c Controller) PendingRemovals(db valman.ReadOnlyKVStore) ([]valman.ValidatorID, error) {
	return c.queues.Load(db, Removals)
}

// InUse returns true if id is in the current set or queued for addition.
func (c Controller) InUse(db valman.ReadOnlyKVStore, id valman.ValidatorID) (bool, error) {
	active, err := c.active.ActiveSet(db)
	if err != nil {
		return false, errors.Wrap(err, "active set")
	}
	if valman.ContainsValidator(active, id) {
		return true, nil
	}
	return c.queues.Contains(db, Additions, id)
}

// RegisterQuery exposes the pending changes under
// "/validators/pending?additions" and "/validators/pending?removals".
// The single result holds the encoded Queue.
func RegisterQuery(qr valman.QueryRouter) {
	qr.Register("/validators/pending", valman.QueryHandlerFunc(queryPending))
}

func queryPending(db valman.ReadOnlyKVStore, mod string, data []byte) ([]valman.Model, error) {
	kind := QueueKind(mod)
	switch kind {
	case Additions, Removals:
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown queue %q", mod)
	}
	ids, err := Queues{}.Load(db, kind)
	if err != nil {
		return nil, err
	}
	raw, err := queueOf(ids).Marshal()
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return []valman.Model{valman.Pair([]byte(kind), raw)}, nil
}
