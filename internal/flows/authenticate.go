package flows

import "context"

// AuthenticateFailureKind classifies per-request validation failures.
// RefreshKind is the only kind the transport layer rejects outright;
// everything else means "proceed unauthenticated".
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureMalformed
	AuthenticateFailureRefreshKind
	AuthenticateFailureVerify
)

// AuthenticateResult carries the resolved subject or failure metadata.
type AuthenticateResult struct {
	Failure AuthenticateFailureKind
	Err     error
	Subject string
}

// AuthenticateDeps captures per-request validation dependencies. All three
// are pure codec operations; authentication never touches the store.
type AuthenticateDeps struct {
	IsRefreshKind func(tokenStr string) (bool, error)
	Subject       func(tokenStr string) (string, error)
	Verify        func(tokenStr, subject string) bool
}

// RunAuthenticate validates a bearer token presented on an ordinary request.
// Refresh-kind tokens are rejected before any further inspection so they can
// never authenticate a protected route.
func RunAuthenticate(_ context.Context, tokenStr string, deps AuthenticateDeps) AuthenticateResult {
	isRefresh, err := deps.IsRefreshKind(tokenStr)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureMalformed, Err: err}
	}
	if isRefresh {
		return AuthenticateResult{Failure: AuthenticateFailureRefreshKind}
	}

	subject, err := deps.Subject(tokenStr)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureMalformed, Err: err}
	}

	if !deps.Verify(tokenStr, subject) {
		return AuthenticateResult{Failure: AuthenticateFailureVerify, Subject: subject}
	}

	return AuthenticateResult{Failure: AuthenticateFailureNone, Subject: subject}
}
