package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Messages are protobuf well-known types, so the service is described by hand
// instead of being generated from a .proto file.

const ScopeServiceName = "adscope.v1.ScopeService"

const (
	ScopeService_ListOptions_FullMethodName    = "/" + ScopeServiceName + "/ListOptions"
	ScopeService_Select_FullMethodName         = "/" + ScopeServiceName + "/Select"
	ScopeService_GetSnapshot_FullMethodName    = "/" + ScopeServiceName + "/GetSnapshot"
	ScopeService_WatchSnapshots_FullMethodName = "/" + ScopeServiceName + "/WatchSnapshots"
)

// ScopeServiceServer is the server API for the ScopeService service
type ScopeServiceServer interface {
	// ListOptions returns the selector entries
	ListOptions(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// Select changes the active selection; the value is "", "all" or a location name
	Select(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetSnapshot returns the current view snapshot
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// WatchSnapshots streams every published snapshot, starting with the current one
	WatchSnapshots(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

// UnimplementedScopeServiceServer can be embedded to have forward compatible implementations
type UnimplementedScopeServiceServer struct{}

func (UnimplementedScopeServiceServer) ListOptions(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListOptions not implemented")
}

func (UnimplementedScopeServiceServer) Select(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Select not implemented")
}

func (UnimplementedScopeServiceServer) GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSnapshot not implemented")
}

func (UnimplementedScopeServiceServer) WatchSnapshots(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method WatchSnapshots not implemented")
}

// RegisterScopeServiceServer registers srv on s
func RegisterScopeServiceServer(s grpc.ServiceRegistrar, srv ScopeServiceServer) {
	s.RegisterService(&ScopeService_ServiceDesc, srv)
}

func _ScopeService_ListOptions_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScopeServiceServer).ListOptions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ScopeService_ListOptions_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScopeServiceServer).ListOptions(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _ScopeService_Select_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScopeServiceServer).Select(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ScopeService_Select_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScopeServiceServer).Select(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _ScopeService_GetSnapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScopeServiceServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ScopeService_GetSnapshot_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScopeServiceServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _ScopeService_WatchSnapshots_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ScopeServiceServer).WatchSnapshots(m, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// ScopeService_ServiceDesc is the grpc.ServiceDesc for the ScopeService service
var ScopeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ScopeServiceName,
	HandlerType: (*ScopeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListOptions",
			Handler:    _ScopeService_ListOptions_Handler,
		},
		{
			MethodName: "Select",
			Handler:    _ScopeService_Select_Handler,
		},
		{
			MethodName: "GetSnapshot",
			Handler:    _ScopeService_GetSnapshot_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchSnapshots",
			Handler:       _ScopeService_WatchSnapshots_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "adscope/v1/scope.proto",
}

// ScopeServiceClient is the client API for the ScopeService service
type ScopeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewScopeServiceClient creates a client on top of an established connection
func NewScopeServiceClient(cc grpc.ClientConnInterface) *ScopeServiceClient {
	return &ScopeServiceClient{cc: cc}
}

func (c *ScopeServiceClient) ListOptions(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ScopeService_ListOptions_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScopeServiceClient) Select(ctx context.Context, value string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ScopeService_Select_FullMethodName, wrapperspb.String(value), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScopeServiceClient) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ScopeService_GetSnapshot_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScopeServiceClient) WatchSnapshots(ctx context.Context, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ScopeService_ServiceDesc.Streams[0], ScopeService_WatchSnapshots_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
