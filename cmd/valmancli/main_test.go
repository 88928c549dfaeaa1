package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/iov-one/valman"
	valmanapp "github.com/iov-one/valman/cmd/valmand/app"
	"github.com/iov-one/valman/store/iavl"
	"github.com/iov-one/valman/weavetest"
	"github.com/iov-one/valman/x/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRegisterFlow(t *testing.T) {
	admin := weavetest.NewCondition()
	validator := weavetest.NewCondition()
	id := valman.ValidatorID(validator.Address())

	tm := newTendermintServer(t, admin.Address())
	defer tm.Close()

	var out bytes.Buffer
	require.NoError(t, cmdKeygen(nil, &out, nil))
	bundle := out.Bytes()
	assert.Contains(t, string(bundle), "finality_private_key")

	out.Reset()
	args := []string{"-tm", tm.URL, "-origin", validator.String()}
	require.NoError(t, cmdSetKeys(bytes.NewReader(bundle), &out, args))
	assert.Contains(t, out.String(), "sessionkeys/set committed")

	// only administrators may register
	out.Reset()
	args = []string{"-tm", tm.URL, "-origin", validator.String(), id.String()}
	assert.Error(t, cmdRegister(nil, &out, args))

	args = []string{"-tm", tm.URL, "-origin", admin.String(), id.String()}
	require.NoError(t, cmdRegister(nil, &out, args))

	out.Reset()
	require.NoError(t, cmdPending(nil, &out, []string{"-tm", tm.URL}))
	var pending map[string][]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &pending))
	assert.Equal(t, []string{id.String()}, pending[string(validators.Additions)])
	assert.Empty(t, pending[string(validators.Removals)])

	// not an active validator yet
	args = []string{"-tm", tm.URL, "-origin", admin.String(), id.String()}
	assert.Error(t, cmdRemove(nil, &out, args))

	out.Reset()
	require.NoError(t, cmdSession(nil, &out, []string{"-tm", tm.URL}))
	assert.JSONEq(t, `{"index": 0, "members": []}`, out.String())
}

func TestList(t *testing.T) {
	tm := newTendermintServer(t, weavetest.NewCondition().Address())
	defer tm.Close()

	var out bytes.Buffer
	require.NoError(t, cmdList(nil, &out, []string{"-tm", tm.URL}))
	var got []validatorInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "10", got[0].VotingPower)
	assert.Equal(t, "tendermint/PubKeyEd25519", got[0].PubKey.Type)
}

func TestArgumentErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, cmdRegister(nil, &out, []string{"-origin", "test/seq/01"}))
	assert.Error(t, cmdRemove(nil, &out, []string{"-origin", "test/seq/01", "a", "b"}))
	assert.Error(t, cmdRemove(nil, &out, []string{"not-an-id"}))
	assert.Error(t, cmdSetKeys(strings.NewReader("{}"), &out, nil))
	assert.Error(t, cmdSetKeys(strings.NewReader("not json"), &out, []string{"-origin", "test/seq/01"}))

	_, err := parseCondition("broken")
	assert.Error(t, err)
	c, err := parseCondition("test/seq/0A")
	require.NoError(t, err)
	assert.Equal(t, valman.NewCondition("test", "seq", []byte{0x0A}), c)
}

// newTendermintServer serves the subset of the tendermint RPC used by
// this program, backed by an in memory application.
func newTendermintServer(t *testing.T, admin valman.Address) *httptest.Server {
	t.Helper()

	genesis, err := json.Marshal(map[string]interface{}{
		"validators": validators.GenesisState{Admins: []valman.Address{admin}},
	})
	require.NoError(t, err)
	app := valmanapp.Application(iavl.NewMemCommitStore(), log.NewNopLogger(), false)
	app.InitChain(abci.RequestInitChain{ChainId: "valman-test", AppStateBytes: genesis})
	app.Commit()

	var (
		mu     sync.Mutex
		height int64 = 1
	)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if *logRequestFl {
			t.Logf("tendermint request: %s %s", r.Method, r.URL.String())
		}
		mu.Lock()
		defer mu.Unlock()

		switch r.URL.Path {
		case "/validators":
			io.WriteString(w, `
				{
					"jsonrpc": "2.0",
					"id": "",
					"result": {
						"block_height": "1",
						"validators": [{
							"address": "B1CA7E78F74423AE01DA3B51E676934D9105F282",
							"pub_key": {"type": "tendermint/PubKeyEd25519", "value": "ASrHklGzkWYreMkjmhK9bwqUbDk1+1KflU+wpDAkvZs="},
							"voting_power": "10"
						}]
					}
				}
			`)
		case "/abci_query":
			path, err := strconv.Unquote(r.URL.Query().Get("path"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := hex.DecodeString(strings.TrimPrefix(r.URL.Query().Get("data"), "0x"))
			res := app.Query(abci.RequestQuery{Path: path, Data: data})
			writeResult(w, map[string]interface{}{"response": res})
		case "/broadcast_tx_commit":
			tx, err := hex.DecodeString(strings.TrimPrefix(r.URL.Query().Get("tx"), "0x"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			height++
			check := app.CheckTx(tx)
			app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: height, ChainID: "valman-test"}})
			var deliver abci.ResponseDeliverTx
			if check.Code == 0 {
				deliver = app.DeliverTx(tx)
			}
			app.EndBlock(abci.RequestEndBlock{Height: height})
			app.Commit()
			writeResult(w, map[string]interface{}{
				"check_tx":   txResult{Code: check.Code, Log: check.Log},
				"deliver_tx": txResult{Code: deliver.Code, Log: deliver.Log},
				"height":     strconv.FormatInt(height, 10),
			})
		default:
			http.Error(w, "not implemented", http.StatusNotImplemented)
		}
	}))
}

func writeResult(w http.ResponseWriter, result interface{}) {
	raw, err := json.Marshal(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	io.WriteString(w, `{"jsonrpc": "2.0", "id": "", "result": `+string(raw)+`}`)
}

var logRequestFl = flag.Bool("logrequest", false, "Log all requests send to tendermint mock server. This is useful when writing new test. Use curl to send the same request to a real tendermint node and record the response.")
