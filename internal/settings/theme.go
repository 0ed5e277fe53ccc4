// Package settings persists user interface preferences, currently the
// colour theme, in a small SQLite database next to the vault.
package settings

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nestkey/internal/common"
)

// Theme is the colour scheme preferred by the user.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeLight
)

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidTheme, s)
	}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
