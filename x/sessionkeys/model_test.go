package sessionkeys

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/iov-one/valman/errors"
	"github.com/iov-one/valman/weavetest/assert"
)

func TestKeyBundleValidate(t *testing.T) {
	full, _, err := GenerateBundle(rand.Reader)
	assert.Nil(t, err)

	cases := map[string]struct {
		bundle  *KeyBundle
		wantErr *errors.Error
	}{
		"generated bundle": {
			bundle:  full,
			wantErr: nil,
		},
		"empty bundle": {
			bundle:  &KeyBundle{},
			wantErr: errors.ErrEmpty,
		},
		"duplicated role": {
			bundle: &KeyBundle{Keys: []RoleKey{
				{Role: RoleGran, Type: "ed25519", Data: []byte{1}},
				{Role: RoleGran, Type: "ed25519", Data: []byte{2}},
			}},
			wantErr: errors.ErrDuplicate,
		},
		"missing data": {
			bundle: &KeyBundle{Keys: []RoleKey{
				{Role: RoleAura, Type: "sr25519"},
			}},
			wantErr: errors.ErrEmpty,
		},
		"invalid role name": {
			bundle: &KeyBundle{Keys: []RoleKey{
				{Role: "Aura!", Type: "sr25519", Data: []byte{1}},
			}},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.bundle.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestKeyBundleEncoding(t *testing.T) {
	b, _, err := GenerateBundle(rand.Reader)
	assert.Nil(t, err)

	raw, err := b.Marshal()
	assert.Nil(t, err)
	if len(raw) < MinEncodedLen() {
		t.Fatalf("encoding shorter than %d: %d", MinEncodedLen(), len(raw))
	}

	var got KeyBundle
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, b, &got)

	k, ok := got.Key(RoleGran)
	if !ok {
		t.Fatal("finality key missing")
	}
	assert.Equal(t, KeySize, len(k.Data))

	cp := got.Copy()
	cp.Keys[0].Data[0]++
	if bytes.Equal(cp.Keys[0].Data, got.Keys[0].Data) {
		t.Fatal("copy shares key data")
	}

	var bad KeyBundle
	assert.IsErr(t, errors.ErrInput, bad.Unmarshal([]byte{0xff, 0xff, 0xff}))
}

func TestExpectedRoles(t *testing.T) {
	roles := ExpectedRoles()
	assert.Equal(t, 2, len(roles))
	assert.Equal(t, RoleAura, roles[0].Role)
	assert.Equal(t, RoleGran, roles[1].Role)
	assert.Equal(t, 2*KeySize, MinEncodedLen())

	// the returned slice is a copy
	roles[0].Size = 1
	assert.Equal(t, KeySize, ExpectedRoles()[0].Size)
}
