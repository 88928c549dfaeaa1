package app

import (
	"crypto/rand"
	"encoding/json"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x/session"
	"github.com/iov-one/valman/x/validators"
	"golang.org/x/crypto/ed25519"
)

// GenInitOptions generates the app_state of a development chain. Every
// argument is the address of an administrator. Without arguments a new
// administrator key is generated.
//
// No validators are listed, the set in force stays the one of the
// tendermint genesis until administrators register new ones.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var admins []valman.Address
	for _, arg := range args {
		a, err := valman.ParseAddress(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "admin %q", arg)
		}
		admins = append(admins, a)
	}
	if len(admins) == 0 {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, errors.Wrap(errors.ErrHuman, err.Error())
		}
		admins = append(admins, valman.NewCondition("sigs", "ed25519", pub).Address())
	}

	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"validators": validators.DefaultConfiguration(),
			"session":    session.DefaultConfiguration(),
		},
		"validators": validators.GenesisState{Admins: admins},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}
