package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/app"
	"github.com/iov-one/valman/errors"
)

// rpcGet calls a tendermint RPC endpoint and decodes its result into
// dest.
func rpcGet(nodeURL, method string, params url.Values, dest interface{}) error {
	u := nodeURL + "/" + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := http.Get(u)
	if err != nil {
		return errors.Wrap(errors.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1e5))
		return errors.Wrapf(errors.ErrNetwork, "unexpected response: %d %s", resp.StatusCode, string(b))
	}

	var payload struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
			Data    string `json:"data"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode response: %s", err)
	}
	if payload.Error != nil {
		return errors.Wrapf(errors.ErrNetwork, "%s: %s", payload.Error.Message, payload.Error.Data)
	}
	if err := json.Unmarshal(payload.Result, dest); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode result: %s", err)
	}
	return nil
}

// abciQuery runs an application query and returns the models found.
func abciQuery(nodeURL, path string, data []byte) ([]valman.Model, error) {
	params := url.Values{"path": {strconv.Quote(path)}}
	if len(data) > 0 {
		params.Set("data", "0x"+hex.EncodeToString(data))
	}
	var res struct {
		Response struct {
			Code  uint32 `json:"code"`
			Log   string `json:"log"`
			Key   []byte `json:"key"`
			Value []byte `json:"value"`
		} `json:"response"`
	}
	if err := rpcGet(nodeURL, "abci_query", params, &res); err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, errors.Wrapf(errors.ErrState, "query failed with code %d: %s", res.Response.Code, res.Response.Log)
	}
	var keys, values app.ResultSet
	if err := keys.Unmarshal(res.Response.Key); err != nil {
		return nil, err
	}
	if err := values.Unmarshal(res.Response.Value); err != nil {
		return nil, err
	}
	return app.JoinResults(&keys, &values)
}

type txResult struct {
	Code uint32 `json:"code"`
	Log  string `json:"log"`
}

// broadcastTx submits tx and waits until it is committed.
func broadcastTx(nodeURL string, tx valman.Tx) (int64, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return 0, errors.Wrap(err, "cannot serialize transaction")
	}
	params := url.Values{"tx": {"0x" + hex.EncodeToString(raw)}}
	var res struct {
		CheckTx   txResult `json:"check_tx"`
		DeliverTx txResult `json:"deliver_tx"`
		Height    string   `json:"height"`
	}
	if err := rpcGet(nodeURL, "broadcast_tx_commit", params, &res); err != nil {
		return 0, err
	}
	if res.CheckTx.Code != 0 {
		return 0, fmt.Errorf("check failed with code %d: %s", res.CheckTx.Code, res.CheckTx.Log)
	}
	if res.DeliverTx.Code != 0 {
		return 0, fmt.Errorf("deliver failed with code %d: %s", res.DeliverTx.Code, res.DeliverTx.Log)
	}
	height, err := strconv.ParseInt(res.Height, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "invalid height %q", res.Height)
	}
	return height, nil
}
