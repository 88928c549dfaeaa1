package weavetest

import "github.com/iov-one/valman"

// Tx is a transaction holding a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg valman.Msg
	// Origin is returned by GetOrigin.
	Origin []valman.Condition
	// Err if set is returned by any method call.
	Err error
}

var _ valman.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (valman.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) GetOrigin() []valman.Condition {
	return tx.Origin
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg is a message with a configurable path.
type Msg struct {
	// RoutePath is returned by Path and used by the router.
	RoutePath string
	// Serialized represents the serialized form of this message.
	Serialized []byte
	// Err if set is returned by any method call.
	Err error
}

var _ valman.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}
