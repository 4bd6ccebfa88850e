// Package runtime wires storage, config, the high-water mark and the id
// generator into a single flake node.
//
// Example:
//
//	cfg := config.Default()
//	rt, err := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	if err != nil { /* handle */ }
//	defer rt.Close()
//	go rt.RunCheckpoints(ctx)
//	next, _ := rt.Generator().NextID()
package runtime
