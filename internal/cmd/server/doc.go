// Package serverrun exposes the Run entrypoint used by the CLI to start a
// flake node: the runtime, the gRPC and HTTP servers and the watermark
// checkpointer, with signal handling and ordered shutdown.
//
// Example:
//
//	opts := serverrun.Options{DataDir: "./data", GRPCAddr: ":50051", HTTPAddr: ":8080", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
