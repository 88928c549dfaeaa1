package valman

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextHeight(t *testing.T) {
	ctx := context.Background()
	_, ok := GetHeight(ctx)
	assert.False(t, ok)

	ctx = WithHeight(ctx, 7)
	h, ok := GetHeight(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), h)

	assert.Panics(t, func() { WithHeight(ctx, 8) })
}

func TestContextHeader(t *testing.T) {
	ctx := WithHeader(context.Background(), abci.Header{Height: 3, ChainID: "test-chain"})
	header, ok := GetHeader(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), header.Height)
	assert.Panics(t, func() { WithHeader(ctx, abci.Header{}) })
}

func TestContextChainID(t *testing.T) {
	ctx := context.Background()
	assert.Panics(t, func() { GetChainID(ctx) })
	assert.Panics(t, func() { WithChainID(ctx, "bad") })

	ctx = WithChainID(ctx, "valman-test")
	assert.Equal(t, "valman-test", GetChainID(ctx))
	assert.Panics(t, func() { WithChainID(ctx, "valman-other") })
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(ctx))

	logger := log.NewNopLogger()
	ctx = WithLogger(ctx, logger)
	assert.Equal(t, logger, GetLogger(ctx))

	ctx = WithLogInfo(ctx, "session", 3)
	assert.NotNil(t, GetLogger(ctx))
}
