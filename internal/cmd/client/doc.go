// Package client provides the `flake` command-line client.
//
// The CLI talks to a flake node over gRPC (default) or the HTTP JSON API
// to issue and inspect ids from a terminal.
//
// # Address configuration
//
// The gRPC address is read from FLAKE_GRPC (default 127.0.0.1:50051). The
// HTTP base URL comes from the embedding application's BaseURLFunc, which
// for the standalone binary reads FLAKE_HTTP (default
// http://127.0.0.1:8080).
//
// Usage
//
//	flake next --count 5
//	flake next --count 2 --format base58 --transport http
//	flake decode 1701234567890123456
//	flake decode --format base58 npL6MjP8Qfc
//	flake info
//
//	flake config init --out flake.yaml
//	FLAKE_MACHINE_ID=3 flake config show --config flake.yaml
package client
