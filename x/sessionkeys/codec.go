package sessionkeys

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// RegisterCodec registers the messages of this extension with the
// application transaction codec.
func RegisterCodec(c *amino.Codec) {
	c.RegisterConcrete(&SetKeysMsg{}, "sessionkeys/set", nil)
	c.RegisterConcrete(&PurgeKeysMsg{}, "sessionkeys/purge", nil)
}
