// Package token manages issuance and verification of compact signed bearer
// tokens with distinct access and refresh kinds, using strict validation
// semantics suitable for low-latency authentication paths.
//
// # Kind claim
//
// Both kinds share one HS256 signing secret and one encoding; an embedded
// "kind" claim is the only thing separating them. Verification is always
// pinned to HS256 and requires an expiry claim.
//
// # Architecture boundaries
//
// This package owns token encoding, signing, and structural inspection. It
// performs no I/O: liveness of refresh tokens is tracked by the refresh
// store, and orchestration (rotation, credential checks) belongs to the
// Engine.
//
// # What this package must NOT do
//
//   - Access Redis or any I/O.
//   - Import tokengate, refresh, or middleware.
//   - Implement rotation or replay logic.
package token
