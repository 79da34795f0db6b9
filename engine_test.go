package tokengate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type memoryUserStore struct {
	mu      sync.RWMutex
	byEmail map[string]UserRecord

	failFind   bool
	failExists bool
	failSave   bool
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]UserRecord)}
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failFind {
		return nil, errors.New("backend down")
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *memoryUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failExists {
		return false, errors.New("backend down")
	}
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *memoryUserStore) Save(_ context.Context, u *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSave {
		return errors.New("backend down")
	}
	s.byEmail[u.Email] = *u
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("engine-test-signing-secret")

	// Minimum-cost Argon2 params keep the hashing in these tests fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.SaltLength = 16
	cfg.Password.KeyLength = 16

	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *memoryUserStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newMemoryUserStore()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(users).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, users, mr
}

func registerAlice(t *testing.T, engine *Engine) *AuthResult {
	t.Helper()

	result, err := engine.Register(context.Background(), "Alice", "Example", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return result
}

func TestRegisterIssuesWorkingPair(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("register returned an incomplete token pair")
	}
	if result.User.Email != "alice@example.com" || result.User.ID == "" {
		t.Fatalf("unexpected profile: %+v", result.User)
	}

	identity, err := engine.Authenticate(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("fresh access token rejected: %v", err)
	}
	if identity.Subject != "alice@example.com" {
		t.Fatalf("unexpected subject %q", identity.Subject)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registerAlice(t, engine)

	_, err := engine.Register(ctx, "Alice", "Two", "alice@example.com", "another-secret")
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		name                                  string
		firstName, lastName, email, password string
	}{
		{"empty first name", "", "Example", "a@example.com", "secret123"},
		{"blank last name", "Alice", "   ", "a@example.com", "secret123"},
		{"empty email", "Alice", "Example", "", "secret123"},
		{"empty password", "Alice", "Example", "a@example.com", ""},
		{"short password", "Alice", "Example", "a@example.com", "short"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Register(ctx, tc.firstName, tc.lastName, tc.email, tc.password)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registerAlice(t, engine)

	result, err := engine.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("login returned an incomplete token pair")
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", result.User)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registerAlice(t, engine)

	_, wrongPass := engine.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := engine.Login(ctx, "nobody@example.com", "secret123")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	if wrongPass.Error() != unknownEmail.Error() {
		t.Fatal("failure messages differ between unknown email and wrong password")
	}
}

func TestRefreshRotation(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	pair, err := engine.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("refresh returned an incomplete pair")
	}
	if pair.RefreshToken == result.RefreshToken {
		t.Fatal("rotation returned the consumed token")
	}

	// The consumed token must never work again.
	if _, err := engine.Refresh(ctx, result.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("replay: expected ErrRefreshInvalid, got %v", err)
	}

	// The replacement works exactly once more.
	if _, err := engine.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second rotation failed: %v", err)
	}
}

func TestRefreshRejectsBadInput(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	if _, err := engine.Refresh(ctx, ""); !errors.Is(err, ErrRefreshRequired) {
		t.Fatalf("empty: expected ErrRefreshRequired, got %v", err)
	}
	if _, err := engine.Refresh(ctx, "garbage"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("garbage: expected ErrRefreshInvalid, got %v", err)
	}
	// An access token is the wrong kind even though its signature is valid.
	if _, err := engine.Refresh(ctx, result.AccessToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("access kind: expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRefreshExpiredFromStore(t *testing.T) {
	engine, _, mr := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	mr.FastForward(testConfig().Token.RefreshTTL * 2)

	if _, err := engine.Refresh(ctx, result.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid after store expiry, got %v", err)
	}
}

func TestRefreshOutageIsDistinct(t *testing.T) {
	engine, _, mr := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	mr.Close()

	_, err := engine.Refresh(ctx, result.RefreshToken)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable during outage, got %v", err)
	}
	if errors.Is(err, ErrRefreshInvalid) {
		t.Fatal("outage must not read as token rejection")
	}
}

func TestLoginOutage(t *testing.T) {
	engine, _, mr := newTestEngine(t)
	ctx := context.Background()

	registerAlice(t, engine)

	mr.Close()

	if _, err := engine.Login(ctx, "alice@example.com", "secret123"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAuthenticateRejectsRefreshKind(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	if _, err := engine.Authenticate(ctx, result.RefreshToken); !errors.Is(err, ErrRefreshTokenForbidden) {
		t.Fatalf("expected ErrRefreshTokenForbidden, got %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	for _, garbage := range []string{"", "nope", "a.b.c"} {
		if _, err := engine.Authenticate(ctx, garbage); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("input %q: expected ErrTokenInvalid, got %v", garbage, err)
		}
	}
}

func TestAuthenticateWorksDuringStoreOutage(t *testing.T) {
	engine, _, mr := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)

	mr.Close()

	identity, err := engine.Authenticate(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("authenticate must not touch the store: %v", err)
	}
	if identity.Subject != "alice@example.com" {
		t.Fatalf("unexpected subject %q", identity.Subject)
	}
}

func TestUserByEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	registerAlice(t, engine)

	profile, err := engine.UserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}
	if profile.FirstName != "Alice" || profile.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if _, err := engine.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserStoreOutage(t *testing.T) {
	engine, users, _ := newTestEngine(t)
	ctx := context.Background()

	registerAlice(t, engine)

	users.failFind = true
	if _, err := engine.UserByEmail(ctx, "alice@example.com"); !errors.Is(err, ErrAccountUnavailable) {
		t.Fatalf("expected ErrAccountUnavailable, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("login during user store outage: expected ErrInvalidCredentials, got %v", err)
	}

	users.failFind = false
	users.failExists = true
	if _, err := engine.Register(ctx, "Bob", "Example", "bob@example.com", "secret123"); !errors.Is(err, ErrAccountUnavailable) {
		t.Fatalf("expected ErrAccountUnavailable, got %v", err)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result := registerAlice(t, engine)
	if _, err := engine.Login(ctx, "alice@example.com", "wrong-password"); err == nil {
		t.Fatal("expected login failure")
	}
	if _, err := engine.Refresh(ctx, result.RefreshToken); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, result.RefreshToken); err == nil {
		t.Fatal("expected replay rejection")
	}

	snap := engine.MetricsSnapshot()
	checks := map[MetricID]uint64{
		MetricRegisterSuccess:      1,
		MetricLoginFailure:         1,
		MetricRefreshSuccess:       1,
		MetricRefreshReuseDetected: 1,
	}
	for id, want := range checks {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("metric %d: got %d, want %d", id, got, want)
		}
	}
}
