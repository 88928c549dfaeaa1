package sessionkeys

import (
	"fmt"
	"regexp"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	// RoleAura is the block authoring role.
	RoleAura = "aura"
	// RoleGran is the finality voting role.
	RoleGran = "gran"

	// KeySize is the length of every expected consensus key.
	KeySize = ed25519.PublicKeySize
)

// ExpectedRole describes a key that must be present in every complete
// bundle.
type ExpectedRole struct {
	Role string
	Type string
	Size int
}

var expectedRoles = []ExpectedRole{
	{Role: RoleAura, Type: "sr25519", Size: KeySize},
	{Role: RoleGran, Type: "ed25519", Size: KeySize},
}

// ExpectedRoles returns the roles a validator must hold a key for before
// it can be activated.
func ExpectedRoles() []ExpectedRole {
	return append([]ExpectedRole(nil), expectedRoles...)
}

// MinEncodedLen is the shortest encoding a complete bundle can have.
func MinEncodedLen() int {
	var n int
	for _, r := range expectedRoles {
		n += r.Size
	}
	return n
}

var isName = regexp.MustCompile(`^[a-z0-9]{2,16}$`).MatchString

// RoleKey is a single public key registered for a consensus role.
type RoleKey struct {
	Role string `json:"role"`
	Type string `json:"type"`
	Data []byte `json:"data"`
}

// Validate checks the shape of the key. It does not check whether the
// role is expected.
func (k RoleKey) Validate() error {
	var errs error
	if !isName(k.Role) {
		errs = errors.AppendField(errs, "Role", errors.Wrapf(errors.ErrInput, "%q", k.Role))
	}
	if !isName(k.Type) {
		errs = errors.AppendField(errs, "Type", errors.Wrapf(errors.ErrInput, "%q", k.Type))
	}
	if len(k.Data) == 0 {
		errs = errors.AppendField(errs, "Data", errors.ErrEmpty)
	}
	return errs
}

// KeyBundle is the set of consensus keys of a single validator.
type KeyBundle struct {
	Keys []RoleKey `json:"keys"`
}

var _ valman.Persistent = (*KeyBundle)(nil)

// Marshal encodes the bundle with amino.
func (b *KeyBundle) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(b)
}

// Unmarshal decodes an amino encoded bundle.
func (b *KeyBundle) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, b); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// Validate checks that every key is well formed and no role is declared
// twice.
func (b *KeyBundle) Validate() error {
	if b == nil || len(b.Keys) == 0 {
		return errors.Wrap(errors.ErrEmpty, "keys")
	}
	var errs error
	seen := make(map[string]bool, len(b.Keys))
	for i, k := range b.Keys {
		field := fmt.Sprintf("Keys.%d", i)
		if err := k.Validate(); err != nil {
			errs = errors.AppendField(errs, field, err)
			continue
		}
		if seen[k.Role] {
			errs = errors.AppendField(errs, field, errors.Wrapf(errors.ErrDuplicate, "role %q", k.Role))
		}
		seen[k.Role] = true
	}
	return errs
}

// CheckComplete returns an error unless the bundle is well formed and
// holds a key of the expected type and size for every expected role.
// Additional roles are allowed.
func CheckComplete(b *KeyBundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	raw, err := b.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrInput, "cannot encode bundle")
	}
	if len(raw) < MinEncodedLen() {
		return errors.Wrapf(errors.ErrInput, "bundle of %d bytes is too short", len(raw))
	}
	for _, want := range expectedRoles {
		k, ok := b.Key(want.Role)
		switch {
		case !ok:
			return errors.Wrapf(errors.ErrInput, "no %s key", want.Role)
		case k.Type != want.Type:
			return errors.Wrapf(errors.ErrInput, "%s key of type %s, want %s", want.Role, k.Type, want.Type)
		case len(k.Data) != want.Size:
			return errors.Wrapf(errors.ErrInput, "%s key of %d bytes, want %d", want.Role, len(k.Data), want.Size)
		}
	}
	return nil
}

// Key returns the key registered for role.
func (b *KeyBundle) Key(role string) (RoleKey, bool) {
	for _, k := range b.Keys {
		if k.Role == role {
			return k, true
		}
	}
	return RoleKey{}, false
}

// Copy returns a deep copy of the bundle.
func (b *KeyBundle) Copy() *KeyBundle {
	keys := make([]RoleKey, len(b.Keys))
	for i, k := range b.Keys {
		keys[i] = RoleKey{
			Role: k.Role,
			Type: k.Type,
			Data: append([]byte(nil), k.Data...),
		}
	}
	return &KeyBundle{Keys: keys}
}

// bundlePrefix is prepended to the validator id to build the store key.
const bundlePrefix = "skeys:"

func bundleKey(id valman.ValidatorID) []byte {
	return append([]byte(bundlePrefix), id...)
}
