package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/iov-one/valman"
	valmanapp "github.com/iov-one/valman/cmd/valmand/app"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x/session"
	"github.com/iov-one/valman/x/sessionkeys"
	"github.com/iov-one/valman/x/validators"
)

const defaultNode = "http://localhost:26657"

func cmdList(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("list", flag.ContinueOnError)
	tmAddrFl := fl.String("tm", defaultNode, "Tendermint node address.")
	if err := fl.Parse(args); err != nil {
		return err
	}

	var res struct {
		Validators []validatorInfo `json:"validators"`
	}
	if err := rpcGet(*tmAddrFl, "validators", nil, &res); err != nil {
		return fmt.Errorf("cannot list validators: %s", err)
	}
	return writeJSON(output, res.Validators)
}

type validatorInfo struct {
	Address     string     `json:"address"`
	PubKey      pubKeyInfo `json:"pub_key"`
	VotingPower string     `json:"voting_power"`
}

type pubKeyInfo struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func cmdPending(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("pending", flag.ContinueOnError)
	tmAddrFl := fl.String("tm", defaultNode, "Tendermint node address.")
	if err := fl.Parse(args); err != nil {
		return err
	}

	pending := make(map[string][]string)
	for _, kind := range []validators.QueueKind{validators.Additions, validators.Removals} {
		models, err := abciQuery(*tmAddrFl, "/validators/pending?"+string(kind), nil)
		if err != nil {
			return fmt.Errorf("cannot query %s: %s", kind, err)
		}
		ids := []string{}
		for _, m := range models {
			if len(m.Value) == 0 {
				continue
			}
			var q validators.Queue
			if err := q.Unmarshal(m.Value); err != nil {
				return err
			}
			for _, id := range q.IDs() {
				ids = append(ids, id.String())
			}
		}
		pending[string(kind)] = ids
	}
	return writeJSON(output, pending)
}

func cmdSession(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("session", flag.ContinueOnError)
	tmAddrFl := fl.String("tm", defaultNode, "Tendermint node address.")
	if err := fl.Parse(args); err != nil {
		return err
	}

	models, err := abciQuery(*tmAddrFl, "/session", nil)
	if err != nil {
		return fmt.Errorf("cannot query session: %s", err)
	}
	var state session.State
	if len(models) > 0 && len(models[0].Value) > 0 {
		if err := state.Unmarshal(models[0].Value); err != nil {
			return err
		}
	}

	type member struct {
		Validator string `json:"validator"`
		KeyType   string `json:"key_type,omitempty"`
		PubKey    string `json:"pub_key,omitempty"`
	}
	view := struct {
		Index   uint32   `json:"index"`
		Members []member `json:"members"`
	}{Index: state.Index, Members: []member{}}
	for _, m := range state.Members {
		view.Members = append(view.Members, member{
			Validator: m.Validator.String(),
			KeyType:   m.KeyType,
			PubKey:    hex.EncodeToString(m.PubKey),
		})
	}
	return writeJSON(output, view)
}

func cmdRegister(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("register", flag.ContinueOnError)
	tmAddrFl := fl.String("tm", defaultNode, "Tendermint node address.")
	originFl := fl.String("origin", "", "Condition of the administrator sending the transaction.")
	if err := fl.Parse(args); err != nil {
		return err
	}
	if fl.NArg() == 0 {
		return errors.Wrap(errors.ErrEmpty, "validator ids are required")
	}
	ids := make([]valman.ValidatorID, 0, fl.NArg())
	for _, arg := range fl.Args() {
		id, err := parseValidatorID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return submit(output, *tmAddrFl, *originFl, validators.NewRegisterValidatorsMsg(ids...))
}

func cmdRemove(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("remove", flag.ContinueOnError)
	tmAddrFl := fl.String("tm", defaultNode, "Tendermint node address.")
	originFl := fl.String("origin", "", "Condition of the administrator sending the transaction.")
	if err := fl.Parse(args); err != nil {
		return err
	}
	if fl.NArg() != 1 {
		return errors.Wrap(errors.ErrInput, "exactly one validator id is required")
	}
	id, err := parseValidatorID(fl.Arg(0))
	if err != nil {
		return err
	}
	return submit(output, *tmAddrFl, *originFl, &validators.RemoveValidatorMsg{Validator: id})
}

// cmdSetKeys reads a key bundle as produced by keygen from the input.
func cmdSetKeys(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("setkeys", flag.ContinueOnError)
	tmAddrFl := fl.String("tm", defaultNode, "Tendermint node address.")
	originFl := fl.String("origin", "", "Condition of the validator account.")
	validatorFl := fl.String("validator", "", "Validator id. Defaults to the origin address.")
	if err := fl.Parse(args); err != nil {
		return err
	}
	origin, err := parseCondition(*originFl)
	if err != nil {
		return err
	}
	id := valman.ValidatorID(origin.Address())
	if *validatorFl != "" {
		if id, err = parseValidatorID(*validatorFl); err != nil {
			return err
		}
	}

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	var generated keygenOutput
	if err := json.Unmarshal(raw, &generated); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode key bundle: %s", err)
	}
	msg := &sessionkeys.SetKeysMsg{Validator: id, Keys: sessionkeys.KeyBundle{Keys: generated.Keys}}
	return submit(output, *tmAddrFl, *originFl, msg)
}

type keygenOutput struct {
	Keys       []sessionkeys.RoleKey `json:"keys"`
	PrivateKey string                `json:"finality_private_key,omitempty"`
}

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("keygen", flag.ContinueOnError)
	if err := fl.Parse(args); err != nil {
		return err
	}
	b, priv, err := sessionkeys.GenerateBundle(rand.Reader)
	if err != nil {
		return err
	}
	return writeJSON(output, keygenOutput{
		Keys:       b.Keys,
		PrivateKey: hex.EncodeToString(priv),
	})
}

func submit(output io.Writer, nodeURL, origin string, msg valman.Msg) error {
	cond, err := parseCondition(origin)
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	height, err := broadcastTx(nodeURL, valmanapp.NewTx(msg, cond))
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s committed at height %d\n", msg.Path(), height)
	return err
}

func parseCondition(s string) (valman.Condition, error) {
	if s == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "origin condition is required")
	}
	var c valman.Condition
	if err := c.UnmarshalJSON([]byte(strconv.Quote(strings.TrimSpace(s)))); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "origin %q: %s", s, err)
	}
	return c, c.Validate()
}

func parseValidatorID(s string) (valman.ValidatorID, error) {
	var id valman.ValidatorID
	if err := id.UnmarshalJSON([]byte(strconv.Quote(s))); err != nil {
		return nil, errors.Wrapf(err, "validator %q", s)
	}
	return id, id.Validate()
}

func writeJSON(output io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = output.Write(append(b, '\n'))
	return err
}
