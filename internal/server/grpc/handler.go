package grpc

import (
	"context"

	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Call decodes the request, runs it through the dispatcher and manages the
// session token: a successful unlock rotates the secret and issues a new
// token, a successful lock or wipe rotates the secret.
func (s *GRPCServer) Call(ctx context.Context, name string, in *structpb.Struct) (*structpb.Struct, error) {
	log := s.logger.With("op", name)
	if sid, ok := SessionIDFromContext(ctx); ok {
		log = log.With("sid", sid)
	}

	op, err := rpc.Decode(name, in)
	if err != nil {
		log.Warn(ctx, "bad request", "error", err.Error())
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := rpc.Response{Result: s.exec.Execute(ctx, op)}

	if resp.Success && (operations.Unlocks(op) || operations.Locks(op)) {
		if err := s.tokens.Rotate(); err != nil {
			log.Error(ctx, "rotate token secret", "error", err.Error())
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	if resp.Success && operations.Unlocks(op) {
		token, err := s.tokens.Issue()
		if err != nil {
			log.Error(ctx, "issue token", "error", err.Error())
			return nil, status.Error(codes.Internal, "internal error")
		}
		resp.Token = token
	}

	out, err := rpc.ToStruct(resp)
	if err != nil {
		log.Error(ctx, "encode response", "error", err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	log.Debug(ctx, "call done", "success", resp.Success)
	return out, nil
}
