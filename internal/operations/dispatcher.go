package operations

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
	"github.com/dmitrijs2005/nestkey/internal/filex"
	"github.com/dmitrijs2005/nestkey/internal/logging"
	"github.com/dmitrijs2005/nestkey/internal/passgen"
	"github.com/dmitrijs2005/nestkey/internal/pin"
	"github.com/dmitrijs2005/nestkey/internal/session"
	"github.com/dmitrijs2005/nestkey/internal/settings"
	"github.com/dmitrijs2005/nestkey/internal/vault"
)

// Dispatcher executes operations against one data directory and one
// session.
type Dispatcher struct {
	pins     *pin.Store
	vault    *vault.Store
	session  *session.Session
	settings settings.Repository
	logger   logging.Logger
	db       *sql.DB
}

// NewDispatcher wires already constructed components together.
func NewDispatcher(pins *pin.Store, vaultStore *vault.Store, sess *session.Session, prefs settings.Repository, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		pins:     pins,
		vault:    vaultStore,
		session:  sess,
		settings: prefs,
		logger:   logger,
	}
}

// Options configure Open.
type Options struct {
	DataDir    string
	Iterations int
	Logger     logging.Logger
}

// Open prepares DataDir, migrates the settings database and returns a
// dispatcher with a fresh, locked session. Close must be called.
func Open(ctx context.Context, opts Options) (*Dispatcher, error) {
	if opts.Iterations == 0 {
		opts.Iterations = cryptox.DefaultIterations
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	if err := filex.EnsureDir(opts.DataDir); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	db, err := settings.OpenDatabase(ctx, filepath.Join(opts.DataDir, common.SettingsFileName))
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	d := NewDispatcher(
		pin.NewStore(opts.DataDir, opts.Iterations),
		vault.NewStore(opts.DataDir),
		session.New(),
		settings.NewSQLiteRepository(db),
		opts.Logger,
	)
	d.db = db
	return d, nil
}

// Close locks the session and releases the settings database.
func (d *Dispatcher) Close() error {
	d.session.Clear()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Execute runs op and reports the outcome. Panics are converted into an
// internal failure.
func (d *Dispatcher) Execute(ctx context.Context, op Operation) (res Result) {
	if op == nil {
		return Failure(fmt.Errorf("%w: nil operation", common.ErrInternal))
	}
	log := d.logger.With("op", op.Name())

	defer func() {
		if p := recover(); p != nil {
			log.Error(ctx, "operation panicked", "panic", fmt.Sprint(p))
			res = Failure(fmt.Errorf("%w: %v", common.ErrInternal, p))
		}
	}()

	res = d.execute(ctx, op)

	if res.Success {
		log.Debug(ctx, "operation done")
	} else {
		log.Warn(ctx, "operation failed", "code", res.Code, "error", res.Error)
	}
	return res
}

func (d *Dispatcher) execute(ctx context.Context, op Operation) Result {
	switch o := op.(type) {
	case PinIsSet:
		return Result{Success: true, IsSet: d.pins.IsSet()}

	case PinCreate:
		return done(d.pins.Create(o.Pin, d.session))

	case PinVerify:
		return done(d.pins.Verify(o.Pin, d.session))

	case PinChange:
		return done(d.pins.Change(o.OldPin, o.NewPin, d.session, d.vault.Rewrap))

	case Lock:
		d.session.Clear()
		return Result{Success: true}

	case VaultGet:
		entries, err := d.vault.ReadAll(d.session)
		if err != nil {
			return Failure(err)
		}
		return Result{Success: true, Vault: entries}

	case VaultAdd:
		e, err := d.vault.Add(d.session, o.Entry)
		if err != nil {
			return Failure(err)
		}
		return Result{Success: true, Entry: &e}

	case VaultUpdate:
		e, err := d.vault.Update(d.session, o.ID, o.Entry)
		if err != nil {
			return Failure(err)
		}
		return Result{Success: true, Entry: &e}

	case VaultDelete:
		return done(d.vault.Delete(d.session, o.ID))

	case VaultWipe:
		if err := d.vault.Wipe(d.session); err != nil {
			return Failure(err)
		}
		d.session.Clear()
		return Result{Success: true}

	case GeneratePassword:
		p, err := passgen.Generate(o.Options)
		if err != nil {
			return Failure(err)
		}
		return Result{Success: true, Password: p}

	case ThemeGet:
		t, err := d.settings.Theme(ctx)
		if err != nil {
			return Failure(fmt.Errorf("%w: %w", common.ErrIO, err))
		}
		res := Result{Success: true, Theme: string(t)}
		if ts, err := d.settings.UpdatedAt(ctx); err != nil {
			d.logger.Warn(ctx, "read theme timestamp", "error", err.Error())
		} else if !ts.IsZero() {
			res.ThemeUpdatedAt = ts.Unix()
		}
		return res

	case ThemeSet:
		t, err := settings.ParseTheme(o.Theme)
		if err != nil {
			return Failure(err)
		}
		if err := d.settings.SetTheme(ctx, t); err != nil {
			return Failure(fmt.Errorf("%w: %w", common.ErrIO, err))
		}
		return Result{Success: true, Theme: string(t)}

	default:
		return Failure(fmt.Errorf("%w: unsupported operation %q", common.ErrInternal, op.Name()))
	}
}

func done(err error) Result {
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true}
}
