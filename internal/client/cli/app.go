package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/client/client"
	"github.com/dmitrijs2005/nestkey/internal/client/config"
	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/logging"
	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/settings"
)

// maxUnlockAttempts bounds the PIN prompts at startup.
const maxUnlockAttempts = 3

type App struct {
	backend    client.Backend
	logger     logging.Logger
	reader     *bufio.Reader
	out        io.Writer
	clearAfter time.Duration

	mu       sync.Mutex
	unlocked bool
	palette  palette

	clipTimer *time.Timer
}

// NewApp connects to the daemon named in c, or opens the vault in-process
// when no daemon address is configured.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel, false)

	var (
		backend client.Backend
		err     error
	)
	if c.Embedded() {
		backend, err = client.OpenLocal(ctx, operations.Options{
			DataDir:    c.DataDir,
			Iterations: c.KDFIterations,
			Logger:     logger.With("module", "operations"),
		})
	} else {
		backend, err = client.NewGRPCClient(c.ServerEndpointAddr)
	}
	if err != nil {
		return nil, err
	}

	return newApp(backend, logger, bufio.NewReader(os.Stdin), os.Stdout, c.ClipboardClear), nil
}

func newApp(b client.Backend, l logging.Logger, r *bufio.Reader, w io.Writer, clearAfter time.Duration) *App {
	return &App{
		backend:    b,
		logger:     l,
		reader:     r,
		out:        w,
		clearAfter: clearAfter,
		palette:    paletteFor(settings.DefaultTheme),
	}
}

// Run performs the startup unlock flow and then serves the REPL until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	fmt.Fprintln(a.out, "NestKey (type 'help' for commands)")
	a.loadTheme(ctx)
	a.startup(ctx)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close() {
	a.mu.Lock()
	if a.clipTimer != nil && a.clipTimer.Stop() {
		_ = clearClipboard()
	}
	a.mu.Unlock()

	if err := a.backend.Close(); err != nil {
		a.logger.Warn(context.Background(), "close backend", "error", err.Error())
	}
}

func (a *App) isUnlocked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unlocked
}

func (a *App) setUnlocked(v bool) {
	a.mu.Lock()
	a.unlocked = v
	a.mu.Unlock()
}

func (a *App) status() string {
	if a.isUnlocked() {
		return "unlocked"
	}
	return "locked"
}

// exec runs op and folds an unsuccessful Result into the returned error.
// A locked answer also resets the local unlocked flag.
func (a *App) exec(ctx context.Context, op operations.Operation) (operations.Result, error) {
	res, err := a.backend.Execute(ctx, op)
	if err != nil {
		return res, err
	}
	if err := res.Err(); err != nil {
		if errors.Is(err, common.ErrLocked) {
			a.setUnlocked(false)
		}
		return res, err
	}
	return res, nil
}

func (a *App) say(format string, args ...any) {
	fmt.Fprintln(a.out, a.palette.ok.Render(fmt.Sprintf(format, args...)))
}

// fail reports err to the user and returns it.
func (a *App) fail(err error) error {
	fmt.Fprintln(a.out, a.palette.err.Render("Error: "+describe(err)))
	return err
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "nestkeyd is not reachable."
	case errors.Is(err, common.ErrLocked):
		return "Vault is locked. Use 'unlock' first."
	case errors.Is(err, common.ErrAuthFailed):
		return "Wrong PIN."
	case errors.Is(err, common.ErrPinNotSet):
		return "No PIN set yet. Use 'setup'."
	case errors.Is(err, common.ErrPinAlreadySet):
		return "A PIN is already set. Use 'chpin' to change it."
	case errors.Is(err, common.ErrInvalidPin):
		return "PIN must be 4 to 12 characters."
	case errors.Is(err, common.ErrDecryptionFailed):
		return "Vault could not be decrypted."
	case errors.Is(err, common.ErrCorruptVault):
		return "Vault file is corrupt."
	case errors.Is(err, common.ErrNotFound):
		return "Entry not found."
	case errors.Is(err, common.ErrNoCharsetSelected):
		return "Select at least one character set."
	case errors.Is(err, common.ErrInvalidTheme):
		return "Theme must be 'dark' or 'light'."
	default:
		return err.Error()
	}
}

func (a *App) loadTheme(ctx context.Context) {
	res, err := a.exec(ctx, operations.ThemeGet{})
	if err != nil {
		a.logger.Warn(ctx, "load theme", "error", err.Error())
		return
	}
	if t, err := settings.ParseTheme(res.Theme); err == nil {
		a.palette = paletteFor(t)
	}
}

// startup asks for a new PIN on first run, otherwise for the existing one.
func (a *App) startup(ctx context.Context) {
	res, err := a.exec(ctx, operations.PinIsSet{})
	if err != nil {
		_ = a.fail(err)
		return
	}

	if !res.IsSet {
		fmt.Fprintln(a.out, "No PIN set yet. Choose a PIN to protect the vault.")
		_ = a.Setup(ctx)
		return
	}

	for i := 0; i < maxUnlockAttempts; i++ {
		err := a.Unlock(ctx)
		if err == nil || !errors.Is(err, common.ErrAuthFailed) {
			return
		}
	}
}
