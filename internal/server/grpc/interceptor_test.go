package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/logging"
	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/rpc"
	"github.com/dmitrijs2005/nestkey/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

func newInterceptorServer(t *testing.T) *GRPCServer {
	t.Helper()
	issuer, err := auth.NewIssuer(time.Minute)
	require.NoError(t, err)
	return NewGRPCServer("127.0.0.1:0", nopLogger{}, nil, issuer)
}

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func TestInterceptor_OpenMethodNeedsNoToken(t *testing.T) {
	s := newInterceptorServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(operations.NamePinVerify)}

	called := false
	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		called = true
		return "ok", nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newInterceptorServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(operations.NameVaultGet)}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run without a token")
		return nil, nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newInterceptorServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(operations.NameVaultWipe)}

	_, err := s.accessTokenInterceptor(withToken("garbage"), nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run with a bad token")
		return nil, nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ValidTokenPassesSessionID(t *testing.T) {
	s := newInterceptorServer(t)
	token, err := s.tokens.Issue()
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(operations.NameLock)}
	_, err = s.accessTokenInterceptor(withToken(token), nil, info, func(ctx context.Context, req any) (any, error) {
		sid, ok := SessionIDFromContext(ctx)
		assert.True(t, ok)
		assert.NotEmpty(t, sid)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestTokenRequired(t *testing.T) {
	for _, name := range rpc.Operations() {
		want := name == operations.NameLock || name == operations.NameVaultGet ||
			name == operations.NameVaultAdd || name == operations.NameVaultUpdate ||
			name == operations.NameVaultDelete || name == operations.NameVaultWipe
		assert.Equal(t, want, tokenRequired[rpc.FullMethod(name)], name)
	}
}
