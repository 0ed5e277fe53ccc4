package grpc

import (
	"context"

	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// KeeperServer handles one call of the named operation.
type KeeperServer interface {
	Call(ctx context.Context, op string, in *structpb.Struct) (*structpb.Struct, error)
}

// tokenRequired lists the methods that need a valid access token.
var tokenRequired = map[string]bool{
	rpc.FullMethod(operations.NameLock):        true,
	rpc.FullMethod(operations.NameVaultGet):    true,
	rpc.FullMethod(operations.NameVaultAdd):    true,
	rpc.FullMethod(operations.NameVaultUpdate): true,
	rpc.FullMethod(operations.NameVaultDelete): true,
	rpc.FullMethod(operations.NameVaultWipe):   true,
}

// ServiceDesc describes nestkey.v1.Keeper: one unary method per operation,
// request and response both google.protobuf.Struct.
func ServiceDesc() grpc.ServiceDesc {
	names := rpc.Operations()
	methods := make([]grpc.MethodDesc, 0, len(names))
	for _, name := range names {
		methods = append(methods, grpc.MethodDesc{
			MethodName: rpc.MethodName(name),
			Handler:    methodHandler(name),
		})
	}

	return grpc.ServiceDesc{
		ServiceName: rpc.ServiceName,
		HandlerType: (*KeeperServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "nestkey/v1/keeper.proto",
	}
}

func methodHandler(op string) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(KeeperServer).Call(ctx, op, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: rpc.FullMethod(op),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(KeeperServer).Call(ctx, op, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
