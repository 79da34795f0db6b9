package tokengate

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/veranyon/tokengate/internal/flows"
	"github.com/veranyon/tokengate/password"
	"github.com/veranyon/tokengate/refresh"
	"github.com/veranyon/tokengate/token"
)

// Engine is the authentication service facade: credential login and
// registration, single-use refresh rotation, and per-request bearer token
// validation. Build one with [New] and share it across goroutines.
type Engine struct {
	config       Config
	tokens       *token.Manager
	store        *refresh.Store
	passwordHash *password.Argon2
	users        UserStore
	metrics      *Metrics
	decoyHash    string

	flows flows.Service
}

// Login verifies the email/password pair and, on success, issues a fresh
// token pair and records the refresh token. Unknown email and wrong
// password both return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return authResultOf(result), nil
}

// Register creates a credential for a new email, then issues and records a
// token pair exactly as [Engine.Login] does. A duplicate email returns
// [ErrAccountExists].
func (e *Engine) Register(ctx context.Context, firstName, lastName, email, password string) (*AuthResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Register(ctx, firstName, lastName, email, password)
	if err != nil {
		return nil, err
	}

	return authResultOf(result), nil
}

// Refresh rotates a presented refresh token: the old token is atomically
// consumed and a new pair is issued. Every presented token works at most
// once; a replay returns [ErrRefreshInvalid].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result := e.flows.Refresh(ctx, refreshToken)
	switch result.Failure {
	case flows.RefreshFailureNone:
		e.metrics.Inc(MetricRefreshSuccess)
		return &TokenPair{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		}, nil
	case flows.RefreshFailureEmpty:
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrRefreshRequired
	case flows.RefreshFailureConsumed:
		e.metrics.Inc(MetricRefreshReuseDetected)
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrRefreshInvalid
	case flows.RefreshFailureStore:
		e.metrics.Inc(MetricStoreUnavailable)
		return nil, ErrStoreUnavailable
	case flows.RefreshFailureIssue:
		return nil, ErrInternal
	default:
		// Malformed, wrong-kind, bad signature, expired: one client-visible
		// outcome for all of them.
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrRefreshInvalid
	}
}

// Authenticate validates a bearer token presented on an ordinary request
// and resolves its identity. Refresh-kind tokens return
// [ErrRefreshTokenForbidden]; any other failure returns [ErrTokenInvalid].
// It never touches the refresh token store.
func (e *Engine) Authenticate(ctx context.Context, tokenStr string) (*Identity, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result := e.flows.Authenticate(ctx, tokenStr)
	switch result.Failure {
	case flows.AuthenticateFailureNone:
		e.metrics.Inc(MetricRequestAuthenticated)
		return &Identity{Subject: result.Subject}, nil
	case flows.AuthenticateFailureRefreshKind:
		e.metrics.Inc(MetricRequestRejected)
		return nil, ErrRefreshTokenForbidden
	default:
		return nil, ErrTokenInvalid
	}
}

// UserByEmail returns the sanitized profile for an authenticated subject.
// The email must come from a verified token, not from client input.
func (e *Engine) UserByEmail(ctx context.Context, email string) (*Profile, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	record, err := e.flows.Profile(ctx, email)
	if err != nil {
		return nil, err
	}

	profile := profileOf(userRecordOf(record))
	return &profile, nil
}

// AccessTTL exposes the configured access-token lifetime for hosts that
// surface it to clients.
func (e *Engine) AccessTTL() int64 {
	return int64(e.config.Token.AccessTTL.Seconds())
}

// MetricsSnapshot copies the engine's outcome counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

func authResultOf(r *flows.LoginResult) *AuthResult {
	return &AuthResult{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		User:         profileOf(userRecordOf(&r.User)),
	}
}

func userRecordOf(r *flows.CredentialRecord) UserRecord {
	return UserRecord{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}

func credentialOf(u *UserRecord) *flows.CredentialRecord {
	if u == nil {
		return nil
	}
	return &flows.CredentialRecord{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
}

func (e *Engine) flowDeps() flows.Deps {
	findByEmail := func(ctx context.Context, email string) (*flows.CredentialRecord, error) {
		user, err := e.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return credentialOf(user), nil
	}

	metricInc := func(id int) {
		e.metrics.Inc(MetricID(id))
	}

	return flows.Deps{
		Login: flows.LoginDeps{
			FindByEmail:    findByEmail,
			VerifyPassword: e.passwordHash.Verify,
			DecoyHash:      e.decoyHash,
			IssueAccess:    e.tokens.IssueAccess,
			IssueRefresh:   e.tokens.IssueRefresh,
			RefreshTTL:     e.tokens.RefreshTTL,
			SaveRefresh:    e.store.Save,
			MetricInc:      metricInc,
			Metrics: flows.LoginMetrics{
				Success:          int(MetricLoginSuccess),
				Failure:          int(MetricLoginFailure),
				StoreUnavailable: int(MetricStoreUnavailable),
			},
			Errors: flows.LoginErrors{
				EngineNotReady:     ErrEngineNotReady,
				InvalidCredentials: ErrInvalidCredentials,
				StoreUnavailable:   ErrStoreUnavailable,
				Internal:           ErrInternal,
			},
		},
		Register: flows.RegisterDeps{
			ExistsByEmail: e.users.ExistsByEmail,
			SaveUser: func(ctx context.Context, record *flows.CredentialRecord) error {
				user := userRecordOf(record)
				return e.users.Save(ctx, &user)
			},
			HashPassword: e.passwordHash.Hash,
			NewUserID:    uuid.NewString,
			IssueAccess:  e.tokens.IssueAccess,
			IssueRefresh: e.tokens.IssueRefresh,
			RefreshTTL:   e.tokens.RefreshTTL,
			SaveRefresh:  e.store.Save,
			MetricInc:    metricInc,
			Metrics: flows.RegisterMetrics{
				Success:          int(MetricRegisterSuccess),
				Conflict:         int(MetricRegisterConflict),
				Failure:          int(MetricRegisterFailure),
				StoreUnavailable: int(MetricStoreUnavailable),
			},
			Errors: flows.RegisterErrors{
				EngineNotReady:     ErrEngineNotReady,
				Validation:         ErrValidation,
				AccountExists:      ErrAccountExists,
				AccountUnavailable: ErrAccountUnavailable,
				StoreUnavailable:   ErrStoreUnavailable,
				Internal:           ErrInternal,
			},
		},
		Refresh: flows.RefreshDeps{
			IsRefreshKind: e.tokens.IsRefreshKind,
			Subject:       e.tokens.Subject,
			Verify:        e.tokens.Verify,
			DeleteRefresh: e.store.Delete,
			SaveRefresh:   e.store.Save,
			IssueAccess:   e.tokens.IssueAccess,
			IssueRefresh:  e.tokens.IssueRefresh,
			RefreshTTL:    e.tokens.RefreshTTL,
			Warn:          log.Printf,
		},
		Authenticate: flows.AuthenticateDeps{
			IsRefreshKind: e.tokens.IsRefreshKind,
			Subject:       e.tokens.Subject,
			Verify:        e.tokens.Verify,
		},
		Profile: flows.ProfileDeps{
			FindByEmail: findByEmail,
			Errors: flows.ProfileErrors{
				EngineNotReady:     ErrEngineNotReady,
				UserNotFound:       ErrUserNotFound,
				AccountUnavailable: ErrAccountUnavailable,
			},
		},
	}
}
