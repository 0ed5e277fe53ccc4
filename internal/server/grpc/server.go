// Package grpc exposes the vault operations to local clients over gRPC.
package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/nestkey/internal/filex"
	"github.com/dmitrijs2005/nestkey/internal/logging"
	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/server/auth"
	"google.golang.org/grpc"
)

const unixScheme = "unix://"

// Executor runs operations. *operations.Dispatcher implements it.
type Executor interface {
	Execute(ctx context.Context, op operations.Operation) operations.Result
}

type GRPCServer struct {
	address string
	exec    Executor
	tokens  *auth.Issuer
	logger  logging.Logger

	// serializes execute-and-rotate so a token never outlives the unlock
	// it was issued for
	mu sync.Mutex
}

func NewGRPCServer(address string, l logging.Logger, exec Executor, tokens *auth.Issuer) *GRPCServer {
	return &GRPCServer{
		address: address,
		exec:    exec,
		tokens:  tokens,
		logger:  l.With("module", "grpc_server"),
	}
}

// Listen opens the configured address: unix:///path for a socket (created
// owner-only), anything else as TCP.
func Listen(address string) (net.Listener, error) {
	path, ok := strings.CutPrefix(address, unixScheme)
	if !ok {
		return net.Listen("tcp", address)
	}

	if err := filex.RemoveIfExists(path); err != nil {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	lis, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, filex.FilePerm); err != nil {
		_ = lis.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return lis, nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := Listen(s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	desc := ServiceDesc()
	srv.RegisterService(&desc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
