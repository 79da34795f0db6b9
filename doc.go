// Package tokengate provides a bearer-token authentication engine with
// short-lived JWT access tokens and single-use, Redis-backed refresh tokens.
//
// The package is designed for concurrent server workloads: [Engine] methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tokengate is the public surface. It exposes [Engine], [Builder], [Config],
// the error taxonomy, and value types (Profile, TokenPair, MetricsSnapshot).
// Flow orchestration lives under internal/ and is never exported; the token
// codec and refresh store live in their own sub-packages so hosts with
// unusual transports can use them directly.
//
// # What this package must NOT do
//
//   - Speak HTTP. Status codes and response envelopes are the host's
//     concern; the engine returns sentinel errors.
//   - Store access tokens. Only refresh tokens have server-side state, and
//     only as an existence marker.
//   - Reveal why a credential or token was rejected beyond the sentinel
//     class. Unknown email and wrong password are indistinguishable, as are
//     expired, forged, and already-consumed refresh tokens.
//
// # Performance contract
//
// Authenticate is the hot path. It is pure computation over the token codec
// and never performs a Redis round-trip. Login, Register, and Refresh are
// allowed store I/O under the configured operation timeout.
package tokengate
