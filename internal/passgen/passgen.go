// Package passgen generates random passwords from selectable character
// classes using crypto/rand.
package passgen

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/nestkey/internal/common"
)

const (
	MinLength     = 4
	MaxLength     = 64
	DefaultLength = 16
)

// Character classes, concatenated into the pool in this order.
const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Numbers   = "0123456789"
	Symbols   = "!@#$%^&*()-_=+[]{}|;:,.<>?/"
)

// Options selects the length and character classes of a password.
type Options struct {
	Length    int  `json:"length"`
	Lowercase bool `json:"lowercase"`
	Uppercase bool `json:"uppercase"`
	Numbers   bool `json:"numbers"`
	Symbols   bool `json:"symbols"`
}

// DefaultOptions enables every class at the default length.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, Lowercase: true, Uppercase: true, Numbers: true, Symbols: true}
}

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

// ClampLength maps 0 to DefaultLength and clamps anything else to
// [MinLength, MaxLength].
func ClampLength(n int) int {
	switch {
	case n == 0:
		return DefaultLength
	case n < MinLength:
		return MinLength
	case n > MaxLength:
		return MaxLength
	}
	return n
}

// Pool returns the concatenated character classes selected by opts.
func (o Options) Pool() string {
	var b strings.Builder
	if o.Lowercase {
		b.WriteString(Lowercase)
	}
	if o.Uppercase {
		b.WriteString(Uppercase)
	}
	if o.Numbers {
		b.WriteString(Numbers)
	}
	if o.Symbols {
		b.WriteString(Symbols)
	}
	return b.String()
}

// Generate returns a password drawn uniformly from the selected pool.
//
// Out-of-range lengths are clamped rather than rejected. Random bytes at or
// above the largest multiple of the pool size are discarded, so every pool
// character is equally likely.
func Generate(opts Options) (string, error) {
	pool := opts.Pool()
	if pool == "" {
		return "", common.ErrNoCharsetSelected
	}
	length := ClampLength(opts.Length)

	limit := 256 - 256%len(pool)
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	defer common.WipeByteArray(buf)

	for len(out) < length {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return "", fmt.Errorf("%w: random source: %v", common.ErrInternal, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, pool[int(b)%len(pool)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
