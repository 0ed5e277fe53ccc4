package common

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

// RandomBytes returns n bytes read from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// WipeByteArray overwrites the contents of b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// DefaultDataDir returns <user config dir>/nestkey, or ./.nestkey when the
// platform has no config dir.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "." + AppDirName
	}
	return filepath.Join(base, AppDirName)
}
