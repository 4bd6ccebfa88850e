// Package id provides a 64-bit, time-ordered snowflake identifier.
//
// # Format
//
// An ID is a signed 64-bit integer whose sign bit is always zero. The
// remaining 63 bits are, most significant first:
//
//	[timestamp delta][data-center id][machine id][sequence]
//
// The default Layout spends 41 bits on milliseconds since DefaultEpoch
// (2020-01-01T00:00:00Z), 5 bits each on the data-center and machine ids and
// 12 bits on the per-millisecond sequence. Numeric order is therefore
// chronological order, and two generators with different (data-center,
// machine) pairs can never emit the same value.
//
// # Monotonicity
//
// A Generator guarantees that every successful NextID returns a value
// strictly greater than any value it returned before, across goroutines:
//   - If the sequence is exhausted within a millisecond, it waits for the
//     next millisecond (bounded by Config.MaxSpins, then ErrOverloaded).
//   - If the wall clock moves backwards, it fails with
//     ErrClockMovedBackwards instead of risking a duplicate, unless the
//     regression is within Config.MaxBackwardDrift, in which case it waits
//     for the clock to catch up.
//
// Usage
//
//	g, err := id.NewGenerator(id.Config{DataCenterID: 1, MachineID: 7})
//	if err != nil { /* configuration error */ }
//	v, err := g.NextID()
//	parts := g.Decode(v)         // timestamp delta, data center, machine, sequence
//	s := v.Encode(id.FormatBase58)
//
// Use NewLazy when construction should be deferred to first use.
package id
