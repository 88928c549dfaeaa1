package app

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Result is a single key or value returned by a query.
type Result struct {
	Data []byte
}

// ResultSet is the serialized form of query keys or values.
type ResultSet struct {
	Results []Result
}

// Marshal serializes the set with amino.
func (r *ResultSet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

// Unmarshal loads the set from its amino form. An empty set is encoded
// as no bytes at all.
func (r *ResultSet) Unmarshal(raw []byte) error {
	if len(raw) == 0 {
		r.Results = nil
		return nil
	}
	if err := cdc.UnmarshalBinaryBare(raw, r); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys of the models.
func ResultsFromKeys(models []valman.Model) *ResultSet {
	res := make([]Result, len(models))
	for i, m := range models {
		res[i] = Result{Data: m.Key}
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values of the models.
func ResultsFromValues(models []valman.Model) *ResultSet {
	res := make([]Result, len(models))
	for i, m := range models {
		res[i] = Result{Data: m.Value}
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues.
func JoinResults(keys, values *ResultSet) ([]valman.Model, error) {
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrap(errors.ErrInput, "mismatched result set size")
	}
	models := make([]valman.Model, len(keys.Results))
	for i := range models {
		models[i] = valman.Pair(keys.Results[i].Data, values.Results[i].Data)
	}
	return models, nil
}

// UnmarshalOneResult parses a result set and, if it is not empty,
// unmarshals the first result into o.
func UnmarshalOneResult(raw []byte, o valman.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(raw); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0].Data)
}
