package transports

import (
	"context"

	"google.golang.org/grpc"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
)

// GrpcTransport implements IDsTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli flakev1.IDServiceClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(flakev1.NewIDServiceClient(conn))
}

// Next issues count ids.
func (t *GrpcTransport) Next(ctx context.Context, count int, format string) (*flakev1.NextResponse, error) {
	var out *flakev1.NextResponse
	err := t.withClient(ctx, func(cli flakev1.IDServiceClient) error {
		resp, err := cli.Next(ctx, &flakev1.NextRequest{Count: int32(count), Format: format})
		out = resp
		return err
	})
	return out, err
}

// Decode splits an id into its fields.
func (t *GrpcTransport) Decode(ctx context.Context, id, format string) (*flakev1.DecodeResponse, error) {
	var out *flakev1.DecodeResponse
	err := t.withClient(ctx, func(cli flakev1.IDServiceClient) error {
		resp, err := cli.Decode(ctx, &flakev1.DecodeRequest{Id: id, Format: format})
		out = resp
		return err
	})
	return out, err
}

// Info describes the node.
func (t *GrpcTransport) Info(ctx context.Context) (*flakev1.InfoResponse, error) {
	var out *flakev1.InfoResponse
	err := t.withClient(ctx, func(cli flakev1.IDServiceClient) error {
		resp, err := cli.Info(ctx, &flakev1.InfoRequest{})
		out = resp
		return err
	})
	return out, err
}
