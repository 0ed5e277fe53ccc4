package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// Test seams for the system clipboard.
var (
	clipboardWrite = clipboard.WriteAll
	clipboardRead  = clipboard.ReadAll
)

func clearClipboard() error {
	return clipboardWrite("")
}

// Copy puts the entry's password on the clipboard and schedules clearing it.
// The clipboard is only cleared if it still holds that password.
func (a *App) Copy(ctx context.Context, ref string) error {
	e, err := a.lookup(ctx, ref)
	if err != nil {
		return a.fail(err)
	}

	if err := clipboardWrite(e.Password); err != nil {
		return a.fail(fmt.Errorf("clipboard: %w", err))
	}

	if a.clearAfter <= 0 {
		a.say("Password for %s copied to clipboard.", e.Site)
		return nil
	}

	secret := e.Password
	a.mu.Lock()
	if a.clipTimer != nil {
		a.clipTimer.Stop()
	}
	a.clipTimer = time.AfterFunc(a.clearAfter, func() {
		if current, err := clipboardRead(); err == nil && current == secret {
			_ = clearClipboard()
		}
	})
	a.mu.Unlock()

	a.say("Password for %s copied to clipboard. Clearing in %s.", e.Site, a.clearAfter)
	return nil
}
