package app

import (
	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx, CheckTx, and BeginBlock
// handlers to the storage and query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder valman.TxDecoder
	handler valman.Handler
	ticker  valman.Ticker
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder valman.TxDecoder,
	handler valman.Handler,
	ticker valman.Ticker,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		ticker:   ticker,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return valman.DeliverTxError(err, b.debug)
	}

	ctx := valman.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", valman.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return valman.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return valman.CheckTxError(err, b.debug)
	}

	ctx := valman.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", valman.GetPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return valman.CheckOrError(res, err, b.debug)
}

// BeginBlock - ABCI - sets up the block context and runs the ticker.
func (b BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	res := b.StoreApp.BeginBlock(req)
	if b.ticker != nil {
		ctx := valman.WithLogInfo(b.BlockContext(), "call", "begin_block")
		tr := b.ticker.Tick(ctx, b.DeliverStore())
		res.Tags = append(res.Tags, tr.Tags...)
	}
	return res
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx valman.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(txBytes)
}
