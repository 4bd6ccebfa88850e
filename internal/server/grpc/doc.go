// Package grpcserver hosts flake.v1.IDService and the standard
// grpc.health.v1.Health service, delegating to the shared id service.
// Messages travel as JSON under the "json" content-subtype.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := grpcserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
