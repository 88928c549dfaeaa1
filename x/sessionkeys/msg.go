package sessionkeys

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

const (
	pathSetKeys   = "sessionkeys/set"
	pathPurgeKeys = "sessionkeys/purge"
)

// SetKeysMsg registers or replaces the key bundle of a validator.
type SetKeysMsg struct {
	Validator valman.ValidatorID `json:"validator"`
	Keys      KeyBundle          `json:"keys"`
}

var _ valman.Msg = (*SetKeysMsg)(nil)

// Path returns the routing path for this message.
func (*SetKeysMsg) Path() string {
	return pathSetKeys
}

func (m *SetKeysMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Validator", m.Validator.Validate())
	errs = errors.AppendField(errs, "Keys", m.Keys.Validate())
	return errs
}

func (m *SetKeysMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *SetKeysMsg) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, m); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// PurgeKeysMsg removes the key bundle of a validator.
type PurgeKeysMsg struct {
	Validator valman.ValidatorID `json:"validator"`
}

var _ valman.Msg = (*PurgeKeysMsg)(nil)

// Path returns the routing path for this message.
func (*PurgeKeysMsg) Path() string {
	return pathPurgeKeys
}

func (m *PurgeKeysMsg) Validate() error {
	return errors.AppendField(nil, "Validator", m.Validator.Validate())
}

func (m *PurgeKeysMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *PurgeKeysMsg) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, m); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
