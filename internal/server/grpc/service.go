package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AuthServiceServer is the handler set registered under pb.ServiceName.
type AuthServiceServer interface {
	SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SignOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RenewToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: pb.ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: pb.MethodSignUp, Handler: unaryHandler(pb.MethodSignUp, AuthServiceServer.SignUp)},
		{MethodName: pb.MethodSignIn, Handler: unaryHandler(pb.MethodSignIn, AuthServiceServer.SignIn)},
		{MethodName: pb.MethodSignOut, Handler: unaryHandler(pb.MethodSignOut, AuthServiceServer.SignOut)},
		{MethodName: pb.MethodRenewToken, Handler: unaryHandler(pb.MethodRenewToken, AuthServiceServer.RenewToken)},
		{MethodName: pb.MethodWhoAmI, Handler: unaryHandler(pb.MethodWhoAmI, AuthServiceServer.WhoAmI)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "authkeeper/v1/auth.proto",
}

type unaryMethod func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: pb.FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
