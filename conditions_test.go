package valman

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/valman/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond     Condition
		wantExt  string
		wantType string
		wantData []byte
		wantErr  *errors.Error
	}{
		"valid": {
			cond:     NewCondition("sigs", "ed25519", []byte{0xCA, 0xFE}),
			wantExt:  "sigs",
			wantType: "ed25519",
			wantData: []byte{0xCA, 0xFE},
		},
		"data with newline": {
			cond:     NewCondition("admin", "gate", []byte("a\nb")),
			wantExt:  "admin",
			wantType: "gate",
			wantData: []byte("a\nb"),
		},
		"missing sections": {
			cond:    Condition("sigs/ed25519"),
			wantErr: errors.ErrInput,
		},
		"extension too short": {
			cond:    NewCondition("ab", "ed25519", []byte{1}),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, data, err := tc.cond.Parse()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantType, typ)
			assert.Equal(t, tc.wantData, data)
			assert.NoError(t, tc.cond.Validate())
		})
	}
}

func TestConditionJSON(t *testing.T) {
	cond := NewCondition("sigs", "ed25519", []byte{0xAB, 0x01})
	raw, err := json.Marshal(cond)
	require.NoError(t, err)
	assert.Equal(t, `"sigs/ed25519/AB01"`, string(raw))

	var got Condition
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, cond.Equals(got))

	var empty Condition
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)
}

func TestAddress(t *testing.T) {
	cond := NewCondition("sigs", "ed25519", []byte{1, 2, 3})
	addr := cond.Address()
	assert.Len(t, addr, AddressLength)
	assert.NoError(t, addr.Validate())
	assert.True(t, addr.Equals(NewAddress(cond)))

	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	var got Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))

	var unknown Address
	err = json.Unmarshal([]byte(`"foo:bar"`), &unknown)
	assert.True(t, errors.ErrType.Is(err))

	parsed, err := ParseAddress("cond:" + cond.String())
	require.NoError(t, err)
	assert.True(t, addr.Equals(parsed))
	parsed, err = ParseAddress(addr.String())
	require.NoError(t, err)
	assert.True(t, addr.Equals(parsed))
	_, err = ParseAddress("")
	assert.True(t, errors.ErrEmpty.Is(err))

	assert.Equal(t, "(nil)", Address(nil).String())
	assert.True(t, errors.ErrEmpty.Is(Address(nil).Validate()))
}
