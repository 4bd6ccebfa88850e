// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
)

// IDsTransport abstracts the transport used by the CLI (gRPC/HTTP). Both
// return the wire shapes of api/flake/v1.
type IDsTransport interface {
	Next(ctx context.Context, count int, format string) (*flakev1.NextResponse, error)
	Decode(ctx context.Context, id, format string) (*flakev1.DecodeResponse, error)
	Info(ctx context.Context) (*flakev1.InfoResponse, error)
}
