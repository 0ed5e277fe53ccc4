package operations

import (
	"errors"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/vault"
)

// Stable failure codes carried by Result.Code.
const (
	CodeInvalidPin       = "invalid_pin"
	CodePinNotSet        = "pin_not_set"
	CodePinAlreadySet    = "pin_already_set"
	CodeAuthFailed       = "auth_failed"
	CodeLocked           = "locked"
	CodeDecryptionFailed = "decryption_failed"
	CodeCorruptVault     = "corrupt_vault"
	CodeNotFound         = "not_found"
	CodeNoCharset        = "no_charset"
	CodeInvalidTheme     = "invalid_theme"
	CodeIO               = "io"
	CodeInternal         = "internal"
)

// Checked in order: ErrDecryptionFailed wraps ErrIntegrity, and the
// more specific meaning must win.
var codeTable = []struct {
	err  error
	code string
}{
	{common.ErrInvalidPin, CodeInvalidPin},
	{common.ErrPinNotSet, CodePinNotSet},
	{common.ErrPinAlreadySet, CodePinAlreadySet},
	{common.ErrAuthFailed, CodeAuthFailed},
	{common.ErrCorruptVerifier, CodeAuthFailed},
	{common.ErrLocked, CodeLocked},
	{common.ErrDecryptionFailed, CodeDecryptionFailed},
	{common.ErrIntegrity, CodeDecryptionFailed},
	{common.ErrCorruptVault, CodeCorruptVault},
	{common.ErrMalformedBlob, CodeCorruptVault},
	{common.ErrNotFound, CodeNotFound},
	{common.ErrNoCharsetSelected, CodeNoCharset},
	{common.ErrInvalidTheme, CodeInvalidTheme},
	{common.ErrIO, CodeIO},
}

var sentinels = map[string]error{
	CodeInvalidPin:       common.ErrInvalidPin,
	CodePinNotSet:        common.ErrPinNotSet,
	CodePinAlreadySet:    common.ErrPinAlreadySet,
	CodeAuthFailed:       common.ErrAuthFailed,
	CodeLocked:           common.ErrLocked,
	CodeDecryptionFailed: common.ErrDecryptionFailed,
	CodeCorruptVault:     common.ErrCorruptVault,
	CodeNotFound:         common.ErrNotFound,
	CodeNoCharset:        common.ErrNoCharsetSelected,
	CodeInvalidTheme:     common.ErrInvalidTheme,
	CodeIO:               common.ErrIO,
	CodeInternal:         common.ErrInternal,
}

// CodeOf maps err to its failure code. nil maps to "".
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codeTable {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// Result is the uniform answer to every Operation. Only the fields relevant
// to the operation are set. A nil Vault on a successful vault-get means an
// empty vault.
type Result struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Code     string        `json:"code,omitempty"`
	IsSet    bool          `json:"isSet"`
	Vault    []vault.Entry `json:"vault,omitempty"`
	Entry    *vault.Entry  `json:"entry,omitempty"`
	Password string        `json:"password,omitempty"`
	Theme    string        `json:"theme,omitempty"`

	// ThemeUpdatedAt is the unix time of the last theme change, zero while
	// the default was never changed.
	ThemeUpdatedAt int64 `json:"themeUpdatedAt,omitempty"`
}

// Failure builds an unsuccessful Result from err.
func Failure(err error) Result {
	return Result{Success: false, Error: err.Error(), Code: CodeOf(err)}
}

// ResultError is returned by Result.Err. It keeps the original message and
// unwraps to the sentinel named by the code.
type ResultError struct {
	Code    string
	Message string
}

func (e *ResultError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *ResultError) Unwrap() error {
	if s, ok := sentinels[e.Code]; ok {
		return s
	}
	return common.ErrInternal
}

// Err converts a failed Result back into an error matchable with errors.Is.
// A successful Result yields nil.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	code := r.Code
	if code == "" {
		code = CodeInternal
	}
	return &ResultError{Code: code, Message: r.Error}
}
