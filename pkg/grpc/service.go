package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	DashboardServiceName = "datalogger.v1.DashboardService"

	MethodListDevices = "/" + DashboardServiceName + "/ListDevices"
	MethodListAlarms  = "/" + DashboardServiceName + "/ListAlarms"
	MethodClearAlarms = "/" + DashboardServiceName + "/ClearAlarms"
	MethodGetHistory  = "/" + DashboardServiceName + "/GetHistory"
	MethodSetLimiter  = "/" + DashboardServiceName + "/SetLimiter"
)

// DashboardServiceServer is the server API of proto/datalogger/v1/dashboard.proto. Its messages are
// well-known types, so the stubs below are kept by hand and checked against the proto in tests.
type DashboardServiceServer interface {
	ListDevices(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListAlarms(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearAlarms(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetLimiter(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterDashboardServiceServer(s grpc.ServiceRegistrar, srv DashboardServiceServer) {
	s.RegisterService(&DashboardService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](
	method string,
	newReq func() Req,
	call func(DashboardServiceServer, context.Context, Req) (Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty   { return new(emptypb.Empty) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }

var DashboardService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListDevices",
			Handler: unaryHandler(MethodListDevices, newEmpty,
				func(s DashboardServiceServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.ListDevices(ctx, in)
				}),
		},
		{
			MethodName: "ListAlarms",
			Handler: unaryHandler(MethodListAlarms, newStruct,
				func(s DashboardServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.ListAlarms(ctx, in)
				}),
		},
		{
			MethodName: "ClearAlarms",
			Handler: unaryHandler(MethodClearAlarms, newEmpty,
				func(s DashboardServiceServer, ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
					return s.ClearAlarms(ctx, in)
				}),
		},
		{
			MethodName: "GetHistory",
			Handler: unaryHandler(MethodGetHistory, newStruct,
				func(s DashboardServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.GetHistory(ctx, in)
				}),
		},
		{
			MethodName: "SetLimiter",
			Handler: unaryHandler(MethodSetLimiter, newStruct,
				func(s DashboardServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return s.SetLimiter(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "datalogger/v1/dashboard.proto",
}

type DashboardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardServiceClient(cc grpc.ClientConnInterface) *DashboardServiceClient {
	return &DashboardServiceClient{cc: cc}
}

func (c *DashboardServiceClient) ListDevices(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListDevices, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardServiceClient) ListAlarms(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListAlarms, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardServiceClient) ClearAlarms(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MethodClearAlarms, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *DashboardServiceClient) GetHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetHistory, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardServiceClient) SetLimiter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodSetLimiter, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
