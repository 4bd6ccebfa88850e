// Package pebblestore provides a thin wrapper around Pebble with an fsync
// policy, batches and minimal metrics hooks. flake keeps only small
// high-water marks in it, so the surface is deliberately narrow.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("k"), []byte("v"))
//	v, err := db.Get([]byte("k"))
//	if errors.Is(err, pebblestore.ErrNotFound) { /* absent */ }
package pebblestore
