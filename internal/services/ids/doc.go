// Package idsvc is the transport-neutral id service: batch issue, decoding
// and node info. The HTTP and gRPC servers are thin adapters over it.
//
// Example:
//
//	svc := idsvc.New(rt)
//	ids, _ := svc.NextEncoded(ctx, 10, "base58")
//	d, _ := svc.Decode(ctx, ids[0], "base58")
package idsvc
