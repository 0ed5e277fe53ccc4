package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient talks to nestkeyd. It keeps the session token returned by the
// last unlock and attaches it to every call.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

// NewGRPCClient prepares a connection to endpoint (host:port or
// unix:///path). The connection is established lazily on the first call.
func NewGRPCClient(endpoint string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpoint}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", endpoint, err)
	}
	c.conn = conn
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *GRPCClient) setToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := c.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// Execute sends op to the daemon. A rejected token is reported as a locked
// vault.
func (c *GRPCClient) Execute(ctx context.Context, op operations.Operation) (operations.Result, error) {
	in, err := rpc.ToStruct(op)
	if err != nil {
		return operations.Result{}, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, rpc.FullMethod(op.Name()), in, out); err != nil {
		return c.mapError(err)
	}

	var resp rpc.Response
	if err := rpc.FromStruct(out, &resp); err != nil {
		return operations.Result{}, err
	}

	switch {
	case resp.Token != "":
		c.setToken(resp.Token)
	case resp.Success && operations.Locks(op):
		c.setToken("")
	}
	return resp.Result, nil
}

func (c *GRPCClient) mapError(err error) (operations.Result, error) {
	st, ok := status.FromError(err)
	if !ok {
		return operations.Result{}, err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		c.setToken("")
		return operations.Failure(fmt.Errorf("%w: %s", common.ErrLocked, st.Message())), nil
	case codes.Unavailable, codes.DeadlineExceeded:
		return operations.Result{}, fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return operations.Result{}, err
	}
}

func (c *GRPCClient) Close() error {
	c.setToken("")
	return c.conn.Close()
}
