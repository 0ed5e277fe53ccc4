package pin

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
	"github.com/dmitrijs2005/nestkey/internal/filex"
	"github.com/dmitrijs2005/nestkey/internal/session"
	"github.com/dmitrijs2005/nestkey/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIterations = 1000

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	return NewStore(dir, testIterations), dir
}

func readVerifier(t *testing.T, dir string) ([]byte, string) {
	t.Helper()
	rawSalt, err := os.ReadFile(filepath.Join(dir, common.SaltFileName))
	require.NoError(t, err)
	salt, err := hex.DecodeString(string(rawSalt))
	require.NoError(t, err)

	rawPin, err := os.ReadFile(filepath.Join(dir, common.PinFileName))
	require.NoError(t, err)
	var vf verifierFile
	require.NoError(t, json.Unmarshal(rawPin, &vf))
	return salt, vf.KeyHash
}

func TestValidate(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"", true},
		{"123", true},
		{"1234", false},
		{"123456789012", false},
		{"1234567890123", true},
		{"äöüß", false},
	}
	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := Validate(tt.pin)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidPin)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIsSet_RequiresBothFiles(t *testing.T) {
	s, dir := newStore(t)
	assert.False(t, s.IsSet())

	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.PinFileName), []byte(`{}`), 0o600))
	assert.False(t, s.IsSet(), "salt missing")

	require.NoError(t, os.WriteFile(filepath.Join(dir, common.SaltFileName), []byte("00"), 0o600))
	assert.True(t, s.IsSet())
}

func TestCreate_WritesVerifierAndUnlocks(t *testing.T) {
	s, dir := newStore(t)
	sess := session.New()

	require.NoError(t, s.Create("1234", sess))
	require.True(t, s.IsSet())
	require.True(t, sess.Unlocked())

	salt, keyHash := readVerifier(t, dir)
	assert.Len(t, salt, cryptox.SaltLen)
	assert.Len(t, keyHash, 64)

	expected := cryptox.DeriveKey("1234", salt, testIterations)
	assert.Equal(t, expected.Hex(), keyHash)

	got, err := sess.RequireUnlocked()
	require.NoError(t, err)
	assert.Equal(t, expected, got)

	if runtime.GOOS != "windows" {
		for _, name := range []string{common.PinFileName, common.SaltFileName} {
			fi, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm(), name)
		}
	}
}

func TestCreate_InvalidPinWritesNothing(t *testing.T) {
	s, dir := newStore(t)
	sess := session.New()

	err := s.Create("12", sess)
	require.ErrorIs(t, err, common.ErrInvalidPin)
	assert.False(t, sess.Unlocked())

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreate_RefusesWhenAlreadySet(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, s.Create("1234", session.New()))
	saltBefore, hashBefore := readVerifier(t, dir)

	sess := session.New()
	err := s.Create("9999", sess)
	require.ErrorIs(t, err, common.ErrPinAlreadySet)
	assert.False(t, sess.Unlocked())

	saltAfter, hashAfter := readVerifier(t, dir)
	assert.Equal(t, saltBefore, saltAfter)
	assert.Equal(t, hashBefore, hashAfter)
}

func TestCreate_IOErrorWhenDirUnusable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s := NewStore(filepath.Join(blocker, "data"), testIterations)
	sess := session.New()

	err := s.Create("1234", sess)
	require.ErrorIs(t, err, common.ErrIO)
	assert.False(t, sess.Unlocked())
}

func TestVerify(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Create("1234", session.New()))

	t.Run("correct pin unlocks", func(t *testing.T) {
		sess := session.New()
		require.NoError(t, s.Verify("1234", sess))
		assert.True(t, sess.Unlocked())
	})

	t.Run("wrong pin leaves session locked", func(t *testing.T) {
		sess := session.New()
		err := s.Verify("4321", sess)
		require.ErrorIs(t, err, common.ErrAuthFailed)
		assert.False(t, sess.Unlocked())
	})

	t.Run("wrong pin does not replace an existing key", func(t *testing.T) {
		sess := session.New()
		require.NoError(t, s.Verify("1234", sess))
		before, _ := sess.RequireUnlocked()

		require.ErrorIs(t, s.Verify("0000", sess), common.ErrAuthFailed)
		after, err := sess.RequireUnlocked()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestVerify_NotSet(t *testing.T) {
	s, _ := newStore(t)
	err := s.Verify("1234", session.New())
	require.ErrorIs(t, err, common.ErrPinNotSet)
}

func TestVerify_AcceptsUppercaseHashAndTrailingNewline(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.MkdirAll(dir, 0o700))

	salt := []byte("0123456789abcdef")
	key := cryptox.DeriveKey("5678", salt, testIterations)

	require.NoError(t, os.WriteFile(filepath.Join(dir, common.SaltFileName), []byte(hex.EncodeToString(salt)+"\n"), 0o600))
	body, err := json.Marshal(verifierFile{KeyHash: strings.ToUpper(key.Hex())})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.PinFileName), body, 0o600))

	sess := session.New()
	require.NoError(t, s.Verify("5678", sess))
	assert.True(t, sess.Unlocked())
}

func TestVerify_CorruptFiles(t *testing.T) {
	tests := []struct {
		name string
		salt string
		pin  string
	}{
		{"salt not hex", "zzzz", `{"keyHash":"` + strings.Repeat("a", 64) + `"}`},
		{"pin not json", "00112233", `{oops`},
		{"hash wrong length", "00112233", `{"keyHash":"abcd"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dir := newStore(t)
			require.NoError(t, os.MkdirAll(dir, 0o700))
			require.NoError(t, os.WriteFile(filepath.Join(dir, common.SaltFileName), []byte(tt.salt), 0o600))
			require.NoError(t, os.WriteFile(filepath.Join(dir, common.PinFileName), []byte(tt.pin), 0o600))

			sess := session.New()
			err := s.Verify("1234", sess)
			require.ErrorIs(t, err, common.ErrCorruptVerifier)
			assert.False(t, sess.Unlocked())
		})
	}
}

func TestChange(t *testing.T) {
	s, dir := newStore(t)
	sess := session.New()
	require.NoError(t, s.Create("1234", sess))
	oldSalt, _ := readVerifier(t, dir)
	oldExpected := cryptox.DeriveKey("1234", oldSalt, testIterations)

	var gotOld, gotNew cryptox.Key
	rewrap := func(oldKey, newKey cryptox.Key) error {
		gotOld, gotNew = oldKey, newKey
		return nil
	}

	require.NoError(t, s.Change("1234", "987654", sess, rewrap))

	newSalt, newHash := readVerifier(t, dir)
	assert.NotEqual(t, oldSalt, newSalt)
	newExpected := cryptox.DeriveKey("987654", newSalt, testIterations)
	assert.Equal(t, newExpected.Hex(), newHash)
	assert.Equal(t, oldExpected, gotOld)
	assert.Equal(t, newExpected, gotNew)

	current, err := sess.RequireUnlocked()
	require.NoError(t, err)
	assert.Equal(t, newExpected, current)

	require.ErrorIs(t, s.Verify("1234", session.New()), common.ErrAuthFailed)
	require.NoError(t, s.Verify("987654", session.New()))
}

func TestChange_Failures(t *testing.T) {
	noop := func(cryptox.Key, cryptox.Key) error { return nil }

	t.Run("wrong old pin", func(t *testing.T) {
		s, _ := newStore(t)
		require.NoError(t, s.Create("1234", session.New()))
		require.ErrorIs(t, s.Change("0000", "5555", session.New(), noop), common.ErrAuthFailed)
	})

	t.Run("invalid new pin", func(t *testing.T) {
		s, _ := newStore(t)
		require.NoError(t, s.Create("1234", session.New()))
		require.ErrorIs(t, s.Change("1234", "55", session.New(), noop), common.ErrInvalidPin)
	})

	t.Run("not set", func(t *testing.T) {
		s, _ := newStore(t)
		require.ErrorIs(t, s.Change("1234", "5555", session.New(), noop), common.ErrPinNotSet)
	})

	t.Run("rewrap failure keeps old verifier", func(t *testing.T) {
		s, _ := newStore(t)
		require.NoError(t, s.Create("1234", session.New()))

		boom := errors.New("boom")
		err := s.Change("1234", "5555", session.New(), func(cryptox.Key, cryptox.Key) error { return boom })
		require.ErrorIs(t, err, boom)

		require.NoError(t, s.Verify("1234", session.New()))
	})
}

func stubWriteFile(t *testing.T, fn func(path string, data []byte, perm os.FileMode) error) {
	t.Helper()
	old := writeFile
	writeFile = fn
	t.Cleanup(func() { writeFile = old })
}

func TestChange_VerifierWriteFailureRestoresVault(t *testing.T) {
	s, dir := newStore(t)
	sess := session.New()
	require.NoError(t, s.Create("1234", sess))
	oldKey, err := sess.RequireUnlocked()
	require.NoError(t, err)

	vs := vault.NewStore(dir)
	_, err = vs.Add(sess, vault.Entry{Site: "bank", Username: "bob", Password: "p"})
	require.NoError(t, err)

	saltBefore, hashBefore := readVerifier(t, dir)

	// The new salt lands, then pin.json cannot be replaced.
	failed := false
	stubWriteFile(t, func(path string, data []byte, perm os.FileMode) error {
		if !failed && filepath.Base(path) == common.PinFileName {
			failed = true
			return errors.New("rename: file exists")
		}
		return filex.WriteFileAtomic(path, data, perm)
	})

	err = s.Change("1234", "5678", sess, vs.Rewrap)
	require.ErrorIs(t, err, common.ErrIO)
	require.True(t, failed)

	saltAfter, hashAfter := readVerifier(t, dir)
	assert.Equal(t, saltBefore, saltAfter)
	assert.Equal(t, hashBefore, hashAfter)

	current, err := sess.RequireUnlocked()
	require.NoError(t, err)
	assert.Equal(t, oldKey, current, "session keeps the old key")

	require.ErrorIs(t, s.Verify("5678", session.New()), common.ErrAuthFailed)

	fresh := session.New()
	require.NoError(t, s.Verify("1234", fresh))
	entries, err := vs.ReadAll(fresh)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bank", entries[0].Site)
}

func TestChange_RollbackFailureIsReported(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Create("1234", session.New()))

	stubWriteFile(t, func(path string, data []byte, perm os.FileMode) error {
		if filepath.Base(path) == common.PinFileName {
			return errors.New("read-only file system")
		}
		return filex.WriteFileAtomic(path, data, perm)
	})

	calls := 0
	rewrap := func(cryptox.Key, cryptox.Key) error {
		calls++
		if calls == 2 {
			return errors.New("vault busy")
		}
		return nil
	}

	err := s.Change("1234", "5678", session.New(), rewrap)
	require.ErrorIs(t, err, common.ErrIO)
	assert.Equal(t, 2, calls, "rewrap runs forward and back")
	assert.Contains(t, err.Error(), "restore vault: vault busy")
	assert.Contains(t, err.Error(), "restore verifier")
}

func TestCreate_RefusesNextToExistingVault(t *testing.T) {
	s, dir := newStore(t)
	sess := session.New()
	require.NoError(t, s.Create("1234", sess))

	vs := vault.NewStore(dir)
	_, err := vs.Add(sess, vault.Entry{Site: "bank"})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, common.SaltFileName)))
	require.False(t, s.IsSet())

	err = s.Create("9999", session.New())
	require.ErrorIs(t, err, common.ErrPinAlreadySet)
	assert.NoFileExists(t, filepath.Join(dir, common.SaltFileName))

	raw, err := os.ReadFile(filepath.Join(dir, common.PinFileName))
	require.NoError(t, err)
	var vf verifierFile
	require.NoError(t, json.Unmarshal(raw, &vf))
	key, err := sess.RequireUnlocked()
	require.NoError(t, err)
	assert.Equal(t, key.Hex(), vf.KeyHash, "verifier left untouched")
}
