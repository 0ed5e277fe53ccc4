// Package server wires the nestkeyd daemon: it opens the vault core for the
// configured data directory and serves it over gRPC until a termination
// signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/nestkey/internal/logging"
	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/server/auth"
	"github.com/dmitrijs2005/nestkey/internal/server/config"

	gs "github.com/dmitrijs2005/nestkey/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	dispatcher *operations.Dispatcher
	tokens     *auth.Issuer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, true)

	d, err := operations.Open(ctx, operations.Options{
		DataDir:    c.DataDir,
		Iterations: c.KDFIterations,
		Logger:     logger.With("module", "operations"),
	})
	if err != nil {
		return nil, fmt.Errorf("vault init error: %w", err)
	}

	tokens, err := auth.NewIssuer(c.TokenValidity)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	return &App{config: c, logger: logger, dispatcher: d, tokens: tokens}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.ListenAddr, app.logger, app.dispatcher, app.tokens)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// locks the session and closes the stores.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "data_dir", app.config.DataDir)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.dispatcher.Close(); err != nil {
		app.logger.Error(ctx, "close vault", "error", err.Error())
	}
	app.logger.Info(ctx, "Stopped")
	return runErr
}
