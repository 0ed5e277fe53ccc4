// Package pin persists the PIN verifier (salt + derived key hash) and
// decides whether a PIN is set, accepted or rejected. A successful create,
// verify or change populates the caller's session with the derived key.
package pin

import (
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
	"github.com/dmitrijs2005/nestkey/internal/filex"
	"github.com/dmitrijs2005/nestkey/internal/session"
)

const (
	MinLength = 4
	MaxLength = 12
)

// verifierFile is the content of pin.json.
type verifierFile struct {
	KeyHash string `json:"keyHash"`
}

// RewrapFunc re-encrypts whatever the old key protects under the new key.
type RewrapFunc func(oldKey, newKey cryptox.Key) error

// writeFile is a test seam for verifier writes.
var writeFile = filex.WriteFileAtomic

// Store keeps pin.json and salt inside dir.
type Store struct {
	dir        string
	iterations int
}

// NewStore returns a Store rooted at dir deriving keys with the given
// PBKDF2 round count.
func NewStore(dir string, iterations int) *Store {
	return &Store{dir: dir, iterations: iterations}
}

func (s *Store) pinPath() string  { return filepath.Join(s.dir, common.PinFileName) }
func (s *Store) saltPath() string { return filepath.Join(s.dir, common.SaltFileName) }

// Validate checks the PIN length constraint.
func Validate(pin string) error {
	n := utf8.RuneCountInString(pin)
	if n < MinLength || n > MaxLength {
		return fmt.Errorf("%w: length must be %d-%d characters", common.ErrInvalidPin, MinLength, MaxLength)
	}
	return nil
}

// IsSet reports whether both the verifier and the salt file are readable.
func (s *Store) IsSet() bool {
	return filex.IsReadableFile(s.pinPath()) && filex.IsReadableFile(s.saltPath())
}

// Create sets up a new PIN and unlocks sess with its key.
//
// It refuses to overwrite an existing verifier, and to start over next to an
// existing vault file: either would orphan the vault sealed under the old
// key. Use Change instead.
func (s *Store) Create(pin string, sess *session.Session) error {
	if err := Validate(pin); err != nil {
		return err
	}
	if s.IsSet() {
		return common.ErrPinAlreadySet
	}
	if filex.IsReadableFile(filepath.Join(s.dir, common.VaultFileName)) {
		return fmt.Errorf("%w: vault file exists without a usable verifier", common.ErrPinAlreadySet)
	}

	key, err := s.write(pin)
	if err != nil {
		return err
	}
	defer key.Wipe()

	sess.Set(key)
	return nil
}

// Verify checks pin against the stored verifier and unlocks sess on match.
// A mismatch returns common.ErrAuthFailed and leaves sess untouched.
func (s *Store) Verify(pin string, sess *session.Session) error {
	key, err := s.check(pin)
	if err != nil {
		return err
	}
	defer key.Wipe()

	sess.Set(key)
	return nil
}

// Change replaces the PIN. The old PIN must verify; rewrap is called with
// both keys before the new verifier is written, and sess ends up holding
// the new key. If the new verifier cannot be written, the vault is rewrapped
// back under the old key and the old verifier files are restored.
func (s *Store) Change(oldPin, newPin string, sess *session.Session, rewrap RewrapFunc) error {
	if err := Validate(newPin); err != nil {
		return err
	}

	oldKey, err := s.check(oldPin)
	if err != nil {
		return err
	}
	defer oldKey.Wipe()

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	newKey := cryptox.DeriveKey(newPin, salt, s.iterations)
	defer newKey.Wipe()

	prevSalt, prevPin, err := s.snapshot()
	if err != nil {
		return err
	}

	if err := rewrap(oldKey, newKey); err != nil {
		return err
	}
	if err := s.persist(salt, &newKey); err != nil {
		return s.rollback(err, prevSalt, prevPin, func() error { return rewrap(newKey, oldKey) })
	}

	sess.Set(newKey)
	return nil
}

// snapshot returns the raw verifier files as they are on disk.
func (s *Store) snapshot() (salt, pin []byte, err error) {
	if salt, err = os.ReadFile(s.saltPath()); err != nil {
		return nil, nil, fmt.Errorf("%w: read salt: %v", common.ErrIO, err)
	}
	if pin, err = os.ReadFile(s.pinPath()); err != nil {
		return nil, nil, fmt.Errorf("%w: read verifier: %v", common.ErrIO, err)
	}
	return salt, pin, nil
}

// rollback undoes a PIN change whose verifier write failed with cause.
// The vault goes back under the old key first, then the old verifier files
// are restored.
func (s *Store) rollback(cause error, salt, pin []byte, unwrap func() error) error {
	errs := []error{cause}
	if err := unwrap(); err != nil {
		errs = append(errs, fmt.Errorf("restore vault: %w", err))
	}
	if err := writeFile(s.saltPath(), salt, filex.FilePerm); err != nil {
		errs = append(errs, fmt.Errorf("%w: restore salt: %v", common.ErrIO, err))
	}
	if err := writeFile(s.pinPath(), pin, filex.FilePerm); err != nil {
		errs = append(errs, fmt.Errorf("%w: restore verifier: %v", common.ErrIO, err))
	}
	return errors.Join(errs...)
}

// write generates a salt, derives the key and persists the verifier.
func (s *Store) write(pin string) (cryptox.Key, error) {
	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return cryptox.Key{}, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	key := cryptox.DeriveKey(pin, salt, s.iterations)
	if err := s.persist(salt, &key); err != nil {
		key.Wipe()
		return cryptox.Key{}, err
	}
	return key, nil
}

// persist writes the salt first and pin.json last, so IsSet only turns
// true once both are in place.
func (s *Store) persist(salt []byte, key *cryptox.Key) error {
	if err := filex.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("%w: %v", common.ErrIO, err)
	}

	body, err := json.MarshalIndent(verifierFile{KeyHash: key.Hex()}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if err := writeFile(s.saltPath(), []byte(hex.EncodeToString(salt)), filex.FilePerm); err != nil {
		return fmt.Errorf("%w: write salt: %v", common.ErrIO, err)
	}
	if err := writeFile(s.pinPath(), body, filex.FilePerm); err != nil {
		return fmt.Errorf("%w: write verifier: %v", common.ErrIO, err)
	}
	return nil
}

// check derives a candidate key from pin and compares it with the stored
// hash in constant time. On success the candidate key is returned.
func (s *Store) check(pin string) (cryptox.Key, error) {
	if !s.IsSet() {
		return cryptox.Key{}, common.ErrPinNotSet
	}

	salt, keyHash, err := s.load()
	if err != nil {
		return cryptox.Key{}, err
	}

	candidate := cryptox.DeriveKey(pin, salt, s.iterations)
	if subtle.ConstantTimeCompare([]byte(candidate.Hex()), []byte(keyHash)) != 1 {
		candidate.Wipe()
		return cryptox.Key{}, common.ErrAuthFailed
	}
	return candidate, nil
}

func (s *Store) load() (salt []byte, keyHash string, err error) {
	rawSalt, err := os.ReadFile(s.saltPath())
	if err != nil {
		return nil, "", fmt.Errorf("%w: read salt: %v", common.ErrIO, err)
	}
	salt, err = hex.DecodeString(strings.TrimSpace(string(rawSalt)))
	if err != nil || len(salt) == 0 {
		return nil, "", fmt.Errorf("%w: salt is not hex", common.ErrCorruptVerifier)
	}

	rawPin, err := os.ReadFile(s.pinPath())
	if err != nil {
		return nil, "", fmt.Errorf("%w: read verifier: %v", common.ErrIO, err)
	}
	var vf verifierFile
	if err := json.Unmarshal(rawPin, &vf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", common.ErrCorruptVerifier, err)
	}
	if len(vf.KeyHash) != 2*cryptox.KeyLen {
		return nil, "", fmt.Errorf("%w: keyHash length", common.ErrCorruptVerifier)
	}

	return salt, strings.ToLower(vf.KeyHash), nil
}
