// Package common defines shared constants, sentinel errors and small helpers
// used across NestKey components. Callers should use errors.Is to match
// these values; components wrap them with fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// PIN lifecycle errors.
	ErrInvalidPin      = errors.New("invalid pin")
	ErrPinNotSet       = errors.New("pin not set")
	ErrPinAlreadySet   = errors.New("pin already set")
	ErrAuthFailed      = errors.New("pin verification failed")
	ErrCorruptVerifier = errors.New("corrupt pin verifier")

	// Session errors.
	ErrLocked = errors.New("vault is locked")

	// Cipher and vault file errors.
	ErrIntegrity        = errors.New("integrity check failed")
	ErrMalformedBlob    = errors.New("malformed sealed blob")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrCorruptVault     = errors.New("corrupt vault")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Filesystem failures.
	ErrIO = errors.New("io error")

	// Generator and settings validation.
	ErrNoCharsetSelected = errors.New("no character sets selected")
	ErrInvalidTheme      = errors.New("invalid theme")

	// Anything that escaped classification.
	ErrInternal = errors.New("internal error")
)
