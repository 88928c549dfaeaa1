package store

import (
	"bytes"

	"github.com/iov-one/valman/errors"
)

// mergeIterator walks the cached items and the parent iterator side by
// side. A cached item shadows a parent entry with the same key, a
// deleted cached item hides it.
type mergeIterator struct {
	cached    []item
	parent    Iterator
	ascending bool

	valid     bool
	fromCache bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []item, parent Iterator, ascending bool) (*mergeIterator, error) {
	it := &mergeIterator{
		cached:    cached,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.settle(); err != nil {
		parent.Close()
		return nil, err
	}
	return it, nil
}

// first returns true if a comes before b in iteration order.
func (m *mergeIterator) first(a, b []byte) bool {
	c := bytes.Compare(a, b)
	if m.ascending {
		return c < 0
	}
	return c > 0
}

// settle moves to the next visible position, skipping deletions.
func (m *mergeIterator) settle() error {
	for {
		if len(m.cached) == 0 {
			m.valid = m.parent.Valid()
			m.fromCache = false
			return nil
		}
		head := m.cached[0]
		if m.parent.Valid() {
			pk := m.parent.Key()
			if m.first(pk, head.key) {
				m.valid = true
				m.fromCache = false
				return nil
			}
			if bytes.Equal(pk, head.key) {
				if err := m.parent.Next(); err != nil {
					return err
				}
			}
		}
		if !head.deleted {
			m.valid = true
			m.fromCache = true
			return nil
		}
		m.cached = m.cached[1:]
	}
}

func (m *mergeIterator) Valid() bool {
	return m.valid
}

func (m *mergeIterator) Next() error {
	if !m.valid {
		return errors.Wrap(errors.ErrHuman, "iterator is not valid")
	}
	if m.fromCache {
		m.cached = m.cached[1:]
	} else if err := m.parent.Next(); err != nil {
		return err
	}
	return m.settle()
}

func (m *mergeIterator) Key() []byte {
	m.assertValid()
	if m.fromCache {
		return m.cached[0].key
	}
	return m.parent.Key()
}

func (m *mergeIterator) Value() []byte {
	m.assertValid()
	if m.fromCache {
		return m.cached[0].value
	}
	return m.parent.Value()
}

func (m *mergeIterator) Close() {
	m.parent.Close()
	m.cached = nil
	m.valid = false
}

func (m *mergeIterator) assertValid() {
	if !m.valid {
		panic("iterator is not valid")
	}
}
