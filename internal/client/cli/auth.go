package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nestkey/internal/operations"
)

var errPinMismatch = errors.New("PINs do not match")

// readNewPin prompts for a PIN twice.
func (a *App) readNewPin(prompt string) (string, error) {
	pin, err := GetSecret(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	again, err := GetSecret(a.reader, "Repeat PIN", a.out)
	if err != nil {
		return "", err
	}
	if pin != again {
		return "", errPinMismatch
	}
	return pin, nil
}

func (a *App) Setup(ctx context.Context) error {
	pin, err := a.readNewPin("New PIN (4-12 characters)")
	if err != nil {
		return a.fail(err)
	}
	if _, err := a.exec(ctx, operations.PinCreate{Pin: pin}); err != nil {
		return a.fail(err)
	}
	a.setUnlocked(true)
	a.say("PIN created. Vault unlocked.")
	return nil
}

func (a *App) Unlock(ctx context.Context) error {
	pin, err := GetSecret(a.reader, "PIN", a.out)
	if err != nil {
		return a.fail(err)
	}
	if _, err := a.exec(ctx, operations.PinVerify{Pin: pin}); err != nil {
		return a.fail(err)
	}
	a.setUnlocked(true)
	a.say("Vault unlocked.")
	return nil
}

func (a *App) Lock(ctx context.Context) error {
	if _, err := a.exec(ctx, operations.Lock{}); err != nil {
		return a.fail(err)
	}
	a.setUnlocked(false)
	a.say("Vault locked.")
	return nil
}

func (a *App) ChangePin(ctx context.Context) error {
	oldPin, err := GetSecret(a.reader, "Current PIN", a.out)
	if err != nil {
		return a.fail(err)
	}
	newPin, err := a.readNewPin("New PIN (4-12 characters)")
	if err != nil {
		return a.fail(err)
	}
	if _, err := a.exec(ctx, operations.PinChange{OldPin: oldPin, NewPin: newPin}); err != nil {
		return a.fail(err)
	}
	a.setUnlocked(true)
	a.say("PIN changed.")
	return nil
}
