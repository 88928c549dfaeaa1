package validators

import (
	"fmt"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

const (
	pathRegister = "validators/register"
	pathRemove   = "validators/remove"
)

// RegisterValidatorsMsg queues validators for addition at the next
// session boundary.
type RegisterValidatorsMsg struct {
	Validators []QueueEntry `json:"validators"`
}

var _ valman.Msg = (*RegisterValidatorsMsg)(nil)

// NewRegisterValidatorsMsg returns a message registering ids in order.
func NewRegisterValidatorsMsg(ids ...valman.ValidatorID) *RegisterValidatorsMsg {
	return &RegisterValidatorsMsg{Validators: queueOf(ids).Entries}
}

// Path returns the routing path for this message.
func (*RegisterValidatorsMsg) Path() string {
	return pathRegister
}

// Validate checks every id. Duplicates are reported by the handler.
func (m *RegisterValidatorsMsg) Validate() error {
	if len(m.Validators) == 0 {
		return errors.Field("Validators", errors.ErrEmpty, "nothing to register")
	}
	var errs error
	for i, e := range m.Validators {
		errs = errors.AppendField(errs, fmt.Sprintf("Validators.%d", i), e.Validator.Validate())
	}
	return errs
}

// IDs returns the validators in submission order.
func (m *RegisterValidatorsMsg) IDs() []valman.ValidatorID {
	return (&Queue{Entries: m.Validators}).IDs()
}

func (m *RegisterValidatorsMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *RegisterValidatorsMsg) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, m); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// RemoveValidatorMsg queues a validator for removal at the next session
// boundary.
type RemoveValidatorMsg struct {
	Validator valman.ValidatorID `json:"validator"`
}

var _ valman.Msg = (*RemoveValidatorMsg)(nil)

// Path returns the routing path for this message.
func (*RemoveValidatorMsg) Path() string {
	return pathRemove
}

func (m *RemoveValidatorMsg) Validate() error {
	return errors.AppendField(nil, "Validator", m.Validator.Validate())
}

func (m *RemoveValidatorMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *RemoveValidatorMsg) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, m); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
