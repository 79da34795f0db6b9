package tokengate

import "errors"

// Sentinel errors form the engine's error taxonomy. Transport adapters map
// them to status codes at the boundary; the engine itself never speaks HTTP.
// Every rejected credential or token maps to one generic message per class
// so the precise internal cause (unknown email, wrong password, expired,
// reused) is not observable by clients.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountExists reports a duplicate registration email.
	ErrAccountExists = errors.New("email already exists")
	// ErrUserNotFound reports a missing credential record on profile lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrValidation reports missing or unusable registration input.
	ErrValidation = errors.New("validation failed")
	// ErrRefreshRequired reports an empty refresh request body.
	ErrRefreshRequired = errors.New("refresh token is required")
	// ErrRefreshInvalid covers wrong-kind, malformed, unverifiable, expired,
	// and already-consumed refresh tokens; callers cannot tell these apart.
	ErrRefreshInvalid = errors.New("invalid or expired refresh token")
	// ErrRefreshTokenForbidden reports a refresh token presented where only
	// access tokens authenticate.
	ErrRefreshTokenForbidden = errors.New("refresh token cannot authenticate requests")
	// ErrTokenInvalid reports an access token that failed verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrStoreUnavailable reports an unreachable refresh token store. It is
	// retryable and deliberately distinct from ErrRefreshInvalid: an outage
	// must never read as "token revoked".
	ErrStoreUnavailable = errors.New("refresh token store unavailable")
	// ErrAccountUnavailable reports an unreachable user store.
	ErrAccountUnavailable = errors.New("account backend unavailable")
	// ErrInternal reports an unexpected internal failure.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady reports use of an engine that was not built.
	ErrEngineNotReady = errors.New("engine not initialized")
)
