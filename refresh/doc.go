// Package refresh implements the Redis-backed liveness store for rotating
// refresh tokens.
//
// # Contract
//
// Presence of a token's key is the sole source of truth for whether the
// token is still redeemable. Entries expire autonomously at TTL, so an
// abandoned session's replay window is bounded even if rotation never
// happens. [Store.Delete] reports whether the key existed, which is what
// makes rotation single-use under concurrency: DEL is atomic per key.
//
// # Failure semantics
//
// An unreachable store surfaces [ErrStoreUnavailable] from every operation.
// Absence is an ordinary result, never an error; an outage is an error,
// never absence.
//
// # What this package must NOT do
//
//   - Parse, sign, or otherwise interpret token contents.
//   - Import tokengate or token (no upward imports).
//   - Implement rotation policy; the Engine owns delete-then-reissue.
package refresh
