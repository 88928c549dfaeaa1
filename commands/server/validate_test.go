package server

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requireKey string

func (k requireKey) FromGenesis(opts valman.Options, params valman.GenesisParams, kv valman.KVStore) error {
	if _, ok := opts[string(k)]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s", string(k))
	}
	return kv.Set([]byte(k), []byte("ok"))
}

func TestValidateGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "valman-genesis")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
		return path
	}
	good := write("good.json", `{"chain_id": "x", "app_state": {"session": {}}}`)
	missing := write("missing.json", `{"chain_id": "x", "app_state": {"other": {}}}`)
	empty := write("empty.json", `{"chain_id": "x"}`)
	broken := write("broken.json", `{"chain_id": `)

	cases := map[string]struct {
		paths   []string
		wantErr *errors.Error
	}{
		"valid":             {paths: []string{good}},
		"initializer fails": {paths: []string{good, missing}, wantErr: errors.ErrNotFound},
		"no app state":      {paths: []string{empty}, wantErr: errors.ErrEmpty},
		"not json":          {paths: []string{broken}, wantErr: errors.ErrInput},
		"no file":           {paths: []string{filepath.Join(dir, "nope.json")}, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateGenesis(requireKey("session"), tc.paths)
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
		})
	}
}
