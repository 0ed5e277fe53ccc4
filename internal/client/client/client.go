package client

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nestkey/internal/operations"
)

var ErrUnavailable = errors.New("daemon unavailable")

// Backend executes operations. Implementations are safe for concurrent use.
type Backend interface {
	Execute(ctx context.Context, op operations.Operation) (operations.Result, error)
	Close() error
}

// Local runs operations on an in-process dispatcher.
type Local struct {
	d *operations.Dispatcher
}

// OpenLocal opens the vault core for opts.DataDir.
func OpenLocal(ctx context.Context, opts operations.Options) (*Local, error) {
	d, err := operations.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Local{d: d}, nil
}

func (l *Local) Execute(ctx context.Context, op operations.Operation) (operations.Result, error) {
	return l.d.Execute(ctx, op), nil
}

func (l *Local) Close() error {
	return l.d.Close()
}
