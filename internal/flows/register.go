package flows

import (
	"context"
	"strings"
	"time"
)

// RegisterMetrics carries metric IDs incremented by the register flow.
type RegisterMetrics struct {
	Success          int
	Conflict         int
	Failure          int
	StoreUnavailable int
}

// RegisterErrors carries host-level sentinel errors returned by the
// register flow.
type RegisterErrors struct {
	EngineNotReady     error
	Validation         error
	AccountExists      error
	AccountUnavailable error
	StoreUnavailable   error
	Internal           error
}

// RegisterDeps captures register flow dependencies.
type RegisterDeps struct {
	ExistsByEmail func(context.Context, string) (bool, error)
	SaveUser      func(context.Context, *CredentialRecord) error
	HashPassword  func(plaintext string) (string, error)
	NewUserID     func() string
	IssueAccess   func(subject string) (string, error)
	IssueRefresh  func(subject string) (string, error)
	RefreshTTL    func() time.Duration
	SaveRefresh   func(ctx context.Context, refreshToken string, ttl time.Duration) error

	MetricInc func(int)
	Metrics   RegisterMetrics
	Errors    RegisterErrors
}

// RunRegister creates a credential for a new email and runs the same token
// issuance tail as login.
func RunRegister(ctx context.Context, firstName, lastName, email, password string, deps RegisterDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.ExistsByEmail == nil ||
		deps.SaveUser == nil ||
		deps.HashPassword == nil ||
		deps.NewUserID == nil ||
		deps.IssueAccess == nil ||
		deps.IssueRefresh == nil ||
		deps.RefreshTTL == nil ||
		deps.SaveRefresh == nil {
		return nil, deps.Errors.EngineNotReady
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" || email == "" || password == "" {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.Validation
	}

	exists, err := deps.ExistsByEmail(ctx, email)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.AccountUnavailable
	}
	if exists {
		deps.MetricInc(deps.Metrics.Conflict)
		return nil, deps.Errors.AccountExists
	}

	digest, err := deps.HashPassword(password)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.Validation
	}

	user := &CredentialRecord{
		ID:           deps.NewUserID(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: digest,
	}
	if err := deps.SaveUser(ctx, user); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, deps.Errors.AccountUnavailable
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
