package session

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
)

// RegisterQuery exposes the session state under "/session".
func RegisterQuery(qr valman.QueryRouter) {
	qr.Register("/session", valman.QueryHandlerFunc(queryState))
}

func queryState(db valman.ReadOnlyKVStore, mod string, data []byte) ([]valman.Model, error) {
	s, err := Store{}.Load(db)
	if err != nil {
		return nil, err
	}
	raw, err := s.Marshal()
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return []valman.Model{valman.Pair(stateKey, raw)}, nil
}
