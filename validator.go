package valman

import (
	"bytes"
	"encoding/json"

	"github.com/iov-one/valman/crypto/bech32"
	"github.com/iov-one/valman/errors"
	amino "github.com/tendermint/go-amino"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ValidatorHRP is the bech32 human readable part used to render
// validator identities.
const ValidatorHRP = "val"

// ValidatorID identifies a consensus participant. It is derived from an
// account Address but is a distinct type, so an account can never be
// passed where a validator is expected by accident.
type ValidatorID []byte

// Equals checks if two validator identities are the same.
func (v ValidatorID) Equals(o ValidatorID) bool {
	return bytes.Equal(v, o)
}

// Compare orders validator identities bytewise.
func (v ValidatorID) Compare(o ValidatorID) int {
	return bytes.Compare(v, o)
}

// Validate returns an error if the identity is not of the address size.
func (v ValidatorID) Validate() error {
	if err := Address(v).Validate(); err != nil {
		return errors.Wrap(err, "validator")
	}
	return nil
}

// String renders the identity in bech32 form.
func (v ValidatorID) String() string {
	if len(v) == 0 {
		return "(nil)"
	}
	enc, err := bech32.Encode(ValidatorHRP, v)
	if err != nil {
		return Address(v).String()
	}
	return string(enc)
}

// MarshalJSON uses the same hex representation as Address.
func (v ValidatorID) MarshalJSON() ([]byte, error) {
	return Address(v).MarshalJSON()
}

// UnmarshalJSON accepts everything Address does, plus the "val:" bech32
// form produced by String.
func (v *ValidatorID) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	if bytes.HasPrefix([]byte(enc), []byte(ValidatorHRP+"1")) {
		enc = "bech32:" + enc
	}
	val, err := decodeAddressString(enc)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// ContainsValidator returns true if id is present in set.
func ContainsValidator(set []ValidatorID, id ValidatorID) bool {
	return IndexOfValidator(set, id) >= 0
}

// IndexOfValidator returns the position of id in set or -1.
func IndexOfValidator(set []ValidatorID, id ValidatorID) int {
	for i, v := range set {
		if v.Equals(id) {
			return i
		}
	}
	return -1
}

// DedupValidators returns set without repeated entries, keeping the
// first occurrence of each identity and the original order.
func DedupValidators(set []ValidatorID) []ValidatorID {
	if len(set) == 0 {
		return set
	}
	seen := make(map[string]struct{}, len(set))
	res := make([]ValidatorID, 0, len(set))
	for _, v := range set {
		if _, ok := seen[string(v)]; ok {
			continue
		}
		seen[string(v)] = struct{}{}
		res = append(res, v)
	}
	return res
}

// SameValidators returns true if both sets hold the same identities in
// the same order.
func SameValidators(a, b []ValidatorID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Pending tendermint validator updates.

// ValidatorUpdate is a change of the consensus engine validator set.
// Power zero removes the validator.
type ValidatorUpdate struct {
	PubKeyType string `json:"pub_key_type"`
	PubKey     []byte `json:"pub_key"`
	Power      int64  `json:"power"`
}

// AsABCI converts the update into the tendermint representation.
func (u ValidatorUpdate) AsABCI() abci.ValidatorUpdate {
	return abci.ValidatorUpdate{
		PubKey: abci.PubKey{Type: u.PubKeyType, Data: u.PubKey},
		Power:  u.Power,
	}
}

type validatorUpdates struct {
	Updates []ValidatorUpdate
}

// pendingUpdatesKey holds the validator updates that must be handed to
// tendermint at the end of the current block.
var pendingUpdatesKey = []byte("_vu:pending")

var cdc = amino.NewCodec()

// AppendValidatorUpdates records updates to be returned to the consensus
// engine. A later update for the same public key replaces an earlier one.
func AppendValidatorUpdates(db KVStore, updates []ValidatorUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	current, err := loadValidatorUpdates(db)
	if err != nil {
		return err
	}
	for _, u := range updates {
		replaced := false
		for i, c := range current.Updates {
			if c.PubKeyType == u.PubKeyType && bytes.Equal(c.PubKey, u.PubKey) {
				current.Updates[i] = u
				replaced = true
				break
			}
		}
		if !replaced {
			current.Updates = append(current.Updates, u)
		}
	}
	raw, err := cdc.MarshalBinaryBare(current)
	if err != nil {
		return errors.Wrap(err, "marshal validator updates")
	}
	return db.Set(pendingUpdatesKey, raw)
}

// TakeValidatorUpdates returns all recorded updates and clears them.
func TakeValidatorUpdates(db KVStore) ([]ValidatorUpdate, error) {
	current, err := loadValidatorUpdates(db)
	if err != nil {
		return nil, err
	}
	if len(current.Updates) == 0 {
		return nil, nil
	}
	if err := db.Delete(pendingUpdatesKey); err != nil {
		return nil, err
	}
	return current.Updates, nil
}

func loadValidatorUpdates(db ReadOnlyKVStore) (validatorUpdates, error) {
	var current validatorUpdates
	raw, err := db.Get(pendingUpdatesKey)
	if err != nil {
		return current, err
	}
	if raw == nil {
		return current, nil
	}
	if err := cdc.UnmarshalBinaryBare(raw, &current); err != nil {
		return current, errors.Wrap(errors.ErrState, "cannot decode validator updates")
	}
	return current, nil
}

// ValidatorUpdatesToABCI converts a list of updates.
func ValidatorUpdatesToABCI(updates []ValidatorUpdate) []abci.ValidatorUpdate {
	if len(updates) == 0 {
		return nil
	}
	res := make([]abci.ValidatorUpdate, len(updates))
	for i, u := range updates {
		res[i] = u.AsABCI()
	}
	return res
}
