// Package watermark persists, per (data center, machine) pair, the unix
// millisecond of the last issued id. A restarted generator seeds its floor
// from it, so ids stay unique even if the host clock went backwards while the
// process was down. Ids issued after the last checkpoint and before a crash
// are not covered; the checkpoint interval bounds that window.
package watermark
