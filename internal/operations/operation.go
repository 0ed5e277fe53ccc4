// Package operations is the single entry point into the vault core. Every
// request is one of a closed set of Operation values; Dispatcher executes it
// and always answers with a Result, never a panic or a bare error.
package operations

import (
	"github.com/dmitrijs2005/nestkey/internal/passgen"
	"github.com/dmitrijs2005/nestkey/internal/vault"
)

// Operation names, also used as gRPC method names by the transport.
const (
	NamePinIsSet         = "pin-is-set"
	NamePinCreate        = "pin-create"
	NamePinVerify        = "pin-verify"
	NamePinChange        = "pin-change"
	NameLock             = "lock"
	NameVaultGet         = "vault-get"
	NameVaultAdd         = "vault-add"
	NameVaultUpdate      = "vault-update"
	NameVaultDelete      = "vault-delete"
	NameVaultWipe        = "vault-wipe"
	NameGeneratePassword = "generate-password"
	NameThemeGet         = "theme-get"
	NameThemeSet         = "theme-set"
)

// Operation is implemented only by the request types in this package.
type Operation interface {
	Name() string
	isOperation()
}

type PinIsSet struct{}

type PinCreate struct {
	Pin string `json:"pin"`
}

type PinVerify struct {
	Pin string `json:"pin"`
}

// PinChange replaces the PIN and re-encrypts the vault under the new key.
type PinChange struct {
	OldPin string `json:"oldPin"`
	NewPin string `json:"newPin"`
}

// Lock forgets the session key.
type Lock struct{}

type VaultGet struct{}

// VaultAdd stores Entry under a new id. Entry.ID is ignored.
type VaultAdd struct {
	Entry vault.Entry `json:"entry"`
}

type VaultUpdate struct {
	ID    string      `json:"id"`
	Entry vault.Entry `json:"entry"`
}

type VaultDelete struct {
	ID string `json:"id"`
}

// VaultWipe deletes the vault file and locks the session.
type VaultWipe struct{}

type GeneratePassword struct {
	Options passgen.Options `json:"options"`
}

type ThemeGet struct{}

type ThemeSet struct {
	Theme string `json:"theme"`
}

func (PinIsSet) Name() string         { return NamePinIsSet }
func (PinCreate) Name() string        { return NamePinCreate }
func (PinVerify) Name() string        { return NamePinVerify }
func (PinChange) Name() string        { return NamePinChange }
func (Lock) Name() string             { return NameLock }
func (VaultGet) Name() string         { return NameVaultGet }
func (VaultAdd) Name() string         { return NameVaultAdd }
func (VaultUpdate) Name() string      { return NameVaultUpdate }
func (VaultDelete) Name() string      { return NameVaultDelete }
func (VaultWipe) Name() string        { return NameVaultWipe }
func (GeneratePassword) Name() string { return NameGeneratePassword }
func (ThemeGet) Name() string         { return NameThemeGet }
func (ThemeSet) Name() string         { return NameThemeSet }

func (PinIsSet) isOperation()         {}
func (PinCreate) isOperation()        {}
func (PinVerify) isOperation()        {}
func (PinChange) isOperation()        {}
func (Lock) isOperation()             {}
func (VaultGet) isOperation()         {}
func (VaultAdd) isOperation()         {}
func (VaultUpdate) isOperation()      {}
func (VaultDelete) isOperation()      {}
func (VaultWipe) isOperation()        {}
func (GeneratePassword) isOperation() {}
func (ThemeGet) isOperation()         {}
func (ThemeSet) isOperation()         {}

// Unlocks reports whether a successful op leaves the session unlocked with a
// freshly derived key.
func Unlocks(op Operation) bool {
	switch op.(type) {
	case PinCreate, PinVerify, PinChange:
		return true
	}
	return false
}

// Locks reports whether a successful op clears the session.
func Locks(op Operation) bool {
	switch op.(type) {
	case Lock, VaultWipe:
		return true
	}
	return false
}
