package passgen

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyFrom(t *testing.T, s, alphabet string) {
	t.Helper()
	for _, r := range s {
		require.True(t, strings.ContainsRune(alphabet, r), "unexpected %q in %q", r, s)
	}
}

func TestGenerate_LowercaseOnly(t *testing.T) {
	pw, err := Generate(Options{Length: 16, Lowercase: true})
	require.NoError(t, err)
	assert.Len(t, pw, 16)
	onlyFrom(t, pw, Lowercase)
}

func TestGenerate_NoCharset(t *testing.T) {
	_, err := Generate(Options{Length: 16})
	require.ErrorIs(t, err, common.ErrNoCharsetSelected)
}

func TestGenerate_LengthClamping(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultLength},
		{1, MinLength},
		{-10, MinLength},
		{4, 4},
		{33, 33},
		{64, 64},
		{65, MaxLength},
		{1000, MaxLength},
	}
	for _, tt := range tests {
		pw, err := Generate(Options{Length: tt.in, Numbers: true})
		require.NoError(t, err)
		assert.Len(t, pw, tt.want, "length %d", tt.in)
		onlyFrom(t, pw, Numbers)
	}
}

func TestGenerate_AllClasses(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, Lowercase+Uppercase+Numbers+Symbols, opts.Pool())

	pw, err := Generate(opts)
	require.NoError(t, err)
	assert.Len(t, pw, DefaultLength)
	onlyFrom(t, pw, opts.Pool())
}

func TestPool_FixedOrder(t *testing.T) {
	assert.Equal(t, Uppercase+Symbols, Options{Symbols: true, Uppercase: true}.Pool())
	assert.Equal(t, Lowercase+Numbers, Options{Numbers: true, Lowercase: true}.Pool())
	assert.Empty(t, Options{}.Pool())
}

func TestGenerate_RejectsBiasedBytes(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })

	// pool of 10 digits: limit is 250, so 250..255 must be skipped
	randReader = bytes.NewReader(append(
		bytes.Repeat([]byte{255, 252, 250}, 2),
		0, 1, 2, 3, 13, 249, 0, 0, 0, 0,
	))

	pw, err := Generate(Options{Length: 4, Numbers: true})
	require.NoError(t, err)
	assert.Equal(t, "0123", pw)
}

func TestGenerate_MapsBytesToPool(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })

	randReader = bytes.NewReader([]byte{13, 249, 25, 26})
	pw, err := Generate(Options{Length: 4, Numbers: true})
	require.NoError(t, err)
	assert.Equal(t, "3956", pw)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerate_RandomSourceFailure(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })
	randReader = failingReader{}

	_, err := Generate(Options{Length: 8, Lowercase: true})
	require.ErrorIs(t, err, common.ErrInternal)
}

func TestGenerate_Distribution(t *testing.T) {
	counts := map[rune]int{}
	for i := 0; i < 200; i++ {
		pw, err := Generate(Options{Length: 64, Numbers: true})
		require.NoError(t, err)
		for _, r := range pw {
			counts[r]++
		}
	}
	// 12800 draws over 10 digits: each should land near 1280
	require.Len(t, counts, 10)
	for r, c := range counts {
		assert.Greater(t, c, 1000, "digit %q underrepresented", r)
		assert.Less(t, c, 1600, "digit %q overrepresented", r)
	}
}
