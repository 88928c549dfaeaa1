package validators

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// RegisterCodec registers the messages of this extension with the
// application transaction codec.
func RegisterCodec(c *amino.Codec) {
	c.RegisterConcrete(&RegisterValidatorsMsg{}, "validators/register", nil)
	c.RegisterConcrete(&RemoveValidatorMsg{}, "validators/remove", nil)
}
