// Package flakev1 defines the flake.v1.IDService gRPC contract: plain Go
// messages, a JSON codec registered under the "json" content-subtype, the
// service descriptor and a typed client.
package flakev1
