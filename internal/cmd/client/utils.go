package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transports "github.com/rzbill/flake/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// grpcAddrFromEnv returns the gRPC server address from FLAKE_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("FLAKE_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// HTTPURLFromEnv returns the HTTP base URL from FLAKE_HTTP or a default.
func HTTPURLFromEnv() string {
	if v := os.Getenv("FLAKE_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// dialGRPCContext dials the flake gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(ctx context.Context) (*grpc.ClientConn, error) {
	addr := grpcAddrFromEnv()
	return grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func getTransport(name string, baseURL BaseURLFunc) (transports.IDsTransport, error) {
	switch name {
	case "", "grpc":
		return transports.NewGrpcTransport(dialGRPCContext), nil
	case "http":
		if baseURL == nil {
			baseURL = HTTPURLFromEnv
		}
		return transports.NewHTTPTransport(baseURL, nil), nil
	default:
		return nil, fmt.Errorf("invalid --transport %q; use grpc|http", name)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
