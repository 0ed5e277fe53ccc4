package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- RandomBytes ----------

func TestRandomBytes_Length(t *testing.T) {
	for _, n := range []int{0, 1, 12, 16, 32} {
		b, err := RandomBytes(n)
		require.NoError(t, err)
		assert.Len(t, b, n)
	}
}

func TestRandomBytes_EntropyHint(t *testing.T) {
	const n = 32
	a, err := RandomBytes(n)
	require.NoError(t, err)
	b, err := RandomBytes(n)
	require.NoError(t, err)

	if string(a) == string(b) {
		t.Logf("warning: two RandomBytes(%d) results are identical; extremely unlikely", n)
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- DefaultDataDir ----------

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	t.Setenv("HOME", "/tmp/home-test")

	dir := DefaultDataDir()
	assert.Equal(t, AppDirName, filepath.Base(dir))
	assert.NotEmpty(t, filepath.Dir(dir))
}
