package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/valman/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

// newHome creates a home directory with a genesis file as written by
// tendermint init.
func newHome(t *testing.T, genesis string) string {
	t.Helper()
	home, err := ioutil.TempDir("", "valman-home")
	require.NoError(t, err)
	if genesis != "" {
		require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0755))
		require.NoError(t, ioutil.WriteFile(GenesisFile(home), []byte(genesis), 0600))
	}
	return home
}

func readGenesis(t *testing.T, home string) genesisDoc {
	t.Helper()
	raw, err := ioutil.ReadFile(GenesisFile(home))
	require.NoError(t, err)
	var doc genesisDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestInitCmd(t *testing.T) {
	home := newHome(t, `{"chain_id": "test-chain-Xy12", "validators": [{"power": "10"}]}`)
	defer os.RemoveAll(home)

	var gotArgs []string
	gen := func(args []string) (json.RawMessage, error) {
		gotArgs = args
		return json.RawMessage(`{"validators":{"admins":[]}}`), nil
	}
	logger := log.NewNopLogger()

	require.NoError(t, InitCmd(gen, logger, home, []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, gotArgs)

	doc := readGenesis(t, home)
	// tendermint values are kept
	assert.JSONEq(t, `"test-chain-Xy12"`, string(doc["chain_id"]))
	assert.NotEmpty(t, doc["validators"])
	assert.JSONEq(t, `{"validators":{"admins":[]}}`, string(doc[appStateKey]))

	// a second run must not silently replace the state
	err := InitCmd(gen, logger, home, nil)
	assert.True(t, errors.ErrState.Is(err))

	require.NoError(t, InitCmd(gen, logger, home, []string{"-force"}))
}

func TestInitCmdWithoutGenesis(t *testing.T) {
	home := newHome(t, "")
	defer os.RemoveAll(home)

	gen := func(args []string) (json.RawMessage, error) {
		t.Fatal("generator must not be called")
		return nil, nil
	}
	err := InitCmd(gen, log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}
