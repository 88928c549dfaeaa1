package session

import (
	"fmt"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// State is the session in progress and its validator set.
type State struct {
	Index   uint32
	Members []Member
}

// Member is a validator of the set, along with the finality key known to
// tendermint. The key is empty if the validator had none registered.
type Member struct {
	Validator valman.ValidatorID
	KeyType   string
	PubKey    []byte
}

var _ valman.Persistent = (*State)(nil)

func (s *State) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *State) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func (s *State) Validate() error {
	var errs error
	for i, m := range s.Members {
		field := fmt.Sprintf("Members.%d", i)
		if err := m.Validator.Validate(); err != nil {
			errs = errors.AppendField(errs, field, err)
			continue
		}
		for _, prev := range s.Members[:i] {
			if prev.Validator.Equals(m.Validator) {
				errs = errors.AppendField(errs, field, errors.ErrDuplicate)
				break
			}
		}
	}
	return errs
}

// Validators returns the ids of the members in set order.
func (s *State) Validators() []valman.ValidatorID {
	if len(s.Members) == 0 {
		return nil
	}
	ids := make([]valman.ValidatorID, len(s.Members))
	for i, m := range s.Members {
		ids[i] = m.Validator
	}
	return ids
}

var stateKey = []byte("_s:state")

// Store persists the session state.
type Store struct{}

// Load returns the current state. Before genesis it is the zero state.
func (Store) Load(db valman.ReadOnlyKVStore) (*State, error) {
	raw, err := db.Get(stateKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	var s State
	if len(raw) == 0 {
		return &s, nil
	}
	if err := s.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "session state")
	}
	return &s, nil
}

// Save validates and writes the state.
func (Store) Save(db valman.KVStore, s *State) error {
	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "session state")
	}
	raw, err := s.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	if len(raw) == 0 {
		return db.Delete(stateKey)
	}
	return db.Set(stateKey, raw)
}

// ActiveSet returns the validator set in force.
func (st Store) ActiveSet(db valman.ReadOnlyKVStore) ([]valman.ValidatorID, error) {
	s, err := st.Load(db)
	if err != nil {
		return nil, err
	}
	return s.Validators(), nil
}
