package flows

import (
	"context"
	"time"
)

// CredentialRecord is the flow-local user model. The password hash never
// leaves the flow layer; the engine strips it when building profiles.
type CredentialRecord struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// LoginResult carries the issued pair plus the matched credential record.
type LoginResult struct {
	User         CredentialRecord
	AccessToken  string
	RefreshToken string
}

// LoginMetrics carries metric IDs incremented by the login flow.
type LoginMetrics struct {
	Success          int
	Failure          int
	StoreUnavailable int
}

// LoginErrors carries host-level sentinel errors returned by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	StoreUnavailable   error
	Internal           error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	FindByEmail    func(context.Context, string) (*CredentialRecord, error)
	VerifyPassword func(password, digest string) (bool, error)
	// DecoyHash is a digest computed once at build time. When the email has
	// no matching record, the provided password is verified against it and
	// the result discarded, so a rejected unknown email costs the same key
	// derivation as a rejected wrong password.
	DecoyHash    string
	IssueAccess  func(subject string) (string, error)
	IssueRefresh func(subject string) (string, error)
	RefreshTTL   func() time.Duration
	SaveRefresh  func(ctx context.Context, refreshToken string, ttl time.Duration) error

	MetricInc func(int)
	Metrics   LoginMetrics
	Errors    LoginErrors
}

// RunLogin executes credential lookup, constant-time-class password
// comparison, and the token issuance tail.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.FindByEmail == nil ||
		deps.VerifyPassword == nil ||
		deps.IssueAccess == nil ||
		deps.IssueRefresh == nil ||
		deps.RefreshTTL == nil ||
		deps.SaveRefresh == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if email == "" || password == "" {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.InvalidCredentials
	}

	user, err := deps.FindByEmail(ctx, email)
	if err != nil || user == nil {
		// Burn the same key derivation as a real comparison so the response
		// time does not reveal whether the email exists.
		_, _ = deps.VerifyPassword(password, deps.DecoyHash)
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.InvalidCredentials
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.InvalidCredentials
	}

	result, failure := issuePair(ctx, *user, issueDeps{
		IssueAccess:  deps.IssueAccess,
		IssueRefresh: deps.IssueRefresh,
		RefreshTTL:   deps.RefreshTTL,
		SaveRefresh:  deps.SaveRefresh,
	})
	switch failure {
	case issueOK:
	case issueFailureStore:
		deps.MetricInc(deps.Metrics.StoreUnavailable)
		return nil, deps.Errors.StoreUnavailable
	default:
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.Internal
	}

	deps.MetricInc(deps.Metrics.Success)
	return result, nil
}

type issueFailure int

const (
	issueOK issueFailure = iota
	issueFailureSign
	issueFailureStore
)

type issueDeps struct {
	IssueAccess  func(string) (string, error)
	IssueRefresh func(string) (string, error)
	RefreshTTL   func() time.Duration
	SaveRefresh  func(context.Context, string, time.Duration) error
}

// issuePair is the shared issuance tail of login and register: mint an
// access/refresh pair for the subject and record the refresh token with its
// full lifetime.
func issuePair(ctx context.Context, user CredentialRecord, deps issueDeps) (*LoginResult, issueFailure) {
	access, err := deps.IssueAccess(user.Email)
	if err != nil {
		return nil, issueFailureSign
	}

	refreshToken, err := deps.IssueRefresh(user.Email)
	if err != nil {
		return nil, issueFailureSign
	}

	if err := deps.SaveRefresh(ctx, refreshToken, deps.RefreshTTL()); err != nil {
		return nil, issueFailureStore
	}

	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, issueOK
}
