// Package cryptox holds the vault's cryptographic primitives: PIN-based key
// derivation (PBKDF2-HMAC-SHA256) and AES-256-GCM sealing of byte payloads.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLen is the size of the derived AES-256 key.
	KeyLen = 32
	// SaltLen is the size of a freshly generated PIN salt.
	SaltLen = 16
	// DefaultIterations is the PBKDF2 round count used for new and existing PINs.
	DefaultIterations = 200_000
)

// Key is a derived symmetric key. It is a value type so copies never alias
// the session's slot; call Wipe on copies that are no longer needed.
type Key [KeyLen]byte

// Hex returns the lowercase hex encoding of the key.
func (k *Key) Hex() string {
	return hex.EncodeToString(k[:])
}

// Equal reports whether k and other hold the same bytes, in constant time.
func (k *Key) Equal(other *Key) bool {
	return subtle.ConstantTimeCompare(k[:], other[:]) == 1
}

// Wipe zeroes the key in place.
func (k *Key) Wipe() {
	common.WipeByteArray(k[:])
}

// DeriveKey stretches pin with salt using PBKDF2-HMAC-SHA256.
//
// The same (pin, salt, iterations) always yields the same key. A non-positive
// iteration count is a programming error and panics.
func DeriveKey(pin string, salt []byte, iterations int) Key {
	if iterations < 1 {
		panic(fmt.Sprintf("cryptox: invalid pbkdf2 iteration count %d", iterations))
	}

	pw := []byte(pin)
	defer common.WipeByteArray(pw)

	derived := pbkdf2.Key(pw, salt, iterations, KeyLen, sha256.New)
	defer common.WipeByteArray(derived)

	var k Key
	copy(k[:], derived)
	return k
}

// GenerateSalt returns SaltLen random bytes.
func GenerateSalt() ([]byte, error) {
	salt, err := common.RandomBytes(SaltLen)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
