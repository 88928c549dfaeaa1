package app

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/x/origin"
	"github.com/iov-one/valman/x/sessionkeys"
	"github.com/iov-one/valman/x/validators"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*valman.Msg)(nil), nil)
	validators.RegisterCodec(cdc)
	sessionkeys.RegisterCodec(cdc)
}

// Tx is the transaction of this application. Origin lists the
// conditions fulfilled by the sender.
type Tx struct {
	Msg    valman.Msg
	Origin []valman.Condition
}

var _ origin.OriginTx = (*Tx)(nil)

// NewTx returns a transaction carrying msg sent by origin.
func NewTx(msg valman.Msg, signers ...valman.Condition) *Tx {
	return &Tx{Msg: msg, Origin: signers}
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (valman.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) GetMsg() (valman.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetOrigin() []valman.Condition {
	return tx.Origin
}

func (tx *Tx) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, tx); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
