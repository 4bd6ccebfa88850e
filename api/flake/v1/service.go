package flakev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName      = "flake.v1.IDService"
	NextFullMethod   = "/" + ServiceName + "/Next"
	DecodeFullMethod = "/" + ServiceName + "/Decode"
	InfoFullMethod   = "/" + ServiceName + "/Info"
)

// IDServiceServer is implemented by the server side of flake.v1.IDService.
type IDServiceServer interface {
	Next(context.Context, *NextRequest) (*NextResponse, error)
	Decode(context.Context, *DecodeRequest) (*DecodeResponse, error)
	Info(context.Context, *InfoRequest) (*InfoResponse, error)
}

// UnimplementedIDServiceServer can be embedded for forward compatibility.
type UnimplementedIDServiceServer struct{}

func (UnimplementedIDServiceServer) Next(context.Context, *NextRequest) (*NextResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Next not implemented")
}
func (UnimplementedIDServiceServer) Decode(context.Context, *DecodeRequest) (*DecodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Decode not implemented")
}
func (UnimplementedIDServiceServer) Info(context.Context, *InfoRequest) (*InfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Info not implemented")
}

// RegisterIDServiceServer registers srv on s.
func RegisterIDServiceServer(s grpc.ServiceRegistrar, srv IDServiceServer) {
	s.RegisterService(&IDServiceDesc, srv)
}

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

// unary adapts a typed method into a grpc.MethodDesc handler.
func unary[Req any, Resp any](fullMethod string, call func(IDServiceServer, context.Context, *Req) (*Resp, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IDServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IDServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// IDServiceDesc describes flake.v1.IDService for grpc.Server.RegisterService.
var IDServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IDServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Next", Handler: unary(NextFullMethod, IDServiceServer.Next)},
		{MethodName: "Decode", Handler: unary(DecodeFullMethod, IDServiceServer.Decode)},
		{MethodName: "Info", Handler: unary(InfoFullMethod, IDServiceServer.Info)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flake/v1/ids.json",
}

// IDServiceClient is the client side of flake.v1.IDService.
type IDServiceClient interface {
	Next(ctx context.Context, in *NextRequest, opts ...grpc.CallOption) (*NextResponse, error)
	Decode(ctx context.Context, in *DecodeRequest, opts ...grpc.CallOption) (*DecodeResponse, error)
	Info(ctx context.Context, in *InfoRequest, opts ...grpc.CallOption) (*InfoResponse, error)
}

type idServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewIDServiceClient returns a client that always selects the JSON codec.
func NewIDServiceClient(cc grpc.ClientConnInterface) IDServiceClient {
	return &idServiceClient{cc: cc}
}

func (c *idServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *idServiceClient) Next(ctx context.Context, in *NextRequest, opts ...grpc.CallOption) (*NextResponse, error) {
	out := new(NextResponse)
	if err := c.invoke(ctx, NextFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *idServiceClient) Decode(ctx context.Context, in *DecodeRequest, opts ...grpc.CallOption) (*DecodeResponse, error) {
	out := new(DecodeResponse)
	if err := c.invoke(ctx, DecodeFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *idServiceClient) Info(ctx context.Context, in *InfoRequest, opts ...grpc.CallOption) (*InfoResponse, error) {
	out := new(InfoResponse)
	if err := c.invoke(ctx, InfoFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
