package validators

import (
	"fmt"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// Queue is the persisted form of a pending change queue.
type Queue struct {
	Entries []QueueEntry
}

// QueueEntry is a single queued validator.
type QueueEntry struct {
	Validator valman.ValidatorID `json:"validator"`
}

var _ valman.Persistent = (*Queue)(nil)

func (q *Queue) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(q)
}

func (q *Queue) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, q); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// Validate checks that every entry is a valid id and none is queued
// twice.
func (q *Queue) Validate() error {
	var errs error
	for i, e := range q.Entries {
		field := fmt.Sprintf("Entries.%d", i)
		if err := e.Validator.Validate(); err != nil {
			errs = errors.AppendField(errs, field, err)
			continue
		}
		for _, prev := range q.Entries[:i] {
			if prev.Validator.Equals(e.Validator) {
				errs = errors.AppendField(errs, field, ErrAlreadyQueued)
				break
			}
		}
	}
	return errs
}

// IDs returns the queued validators in queue order.
func (q *Queue) IDs() []valman.ValidatorID {
	if len(q.Entries) == 0 {
		return nil
	}
	ids := make([]valman.ValidatorID, len(q.Entries))
	for i, e := range q.Entries {
		ids[i] = e.Validator
	}
	return ids
}

func queueOf(ids []valman.ValidatorID) *Queue {
	q := &Queue{Entries: make([]QueueEntry, len(ids))}
	for i, id := range ids {
		q.Entries[i] = QueueEntry{Validator: id}
	}
	return q
}

// QueueKind names one of the two pending change queues.
type QueueKind string

const (
	Additions QueueKind = "additions"
	Removals  QueueKind = "removals"
)

func (k QueueKind) key() []byte {
	return []byte("_v:" + string(k))
}

// Queues gives access to the pending change queues.
type Queues struct{}

// Load returns the content of the queue without modifying it.
func (Queues) Load(db valman.ReadOnlyKVStore, kind QueueKind) ([]valman.ValidatorID, error) {
	raw, err := db.Get(kind.key())
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return nil, nil
	}
	var q Queue
	if err := q.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "%s queue", kind)
	}
	return q.IDs(), nil
}

// Append adds ids at the end of the queue. It fails without modifying
// the queue if any of them is already queued.
func (qs Queues) Append(db valman.KVStore, kind QueueKind, ids ...valman.ValidatorID) error {
	if len(ids) == 0 {
		return nil
	}
	current, err := qs.Load(db, kind)
	if err != nil {
		return err
	}
	q := queueOf(append(current, ids...))
	if err := q.Validate(); err != nil {
		return errors.Wrapf(err, "%s queue", kind)
	}
	raw, err := q.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return db.Set(kind.key(), raw)
}

// Take returns the content of the queue and empties it.
func (qs Queues) Take(db valman.KVStore, kind QueueKind) ([]valman.ValidatorID, error) {
	ids, err := qs.Load(db, kind)
	if err != nil || ids == nil {
		return nil, err
	}
	if err := db.Delete(kind.key()); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ids, nil
}

// Contains returns true if id is in the queue.
func (qs Queues) Contains(db valman.ReadOnlyKVStore, kind QueueKind, id valman.ValidatorID) (bool, error) {
	ids, err := qs.Load(db, kind)
	if err != nil {
		return false, err
	}
	return valman.ContainsValidator(ids, id), nil
}
