// Package flows contains pure-function orchestrators for every Engine
// operation. Each flow receives its dependencies as an explicit Deps struct
// wired once by the root engine, returns either a result value or a
// classified failure, and never touches package-level state. Expected
// outcomes (invalid credentials, consumed tokens) are ordinary return
// values, not panics or cross-boundary errors.
package flows
