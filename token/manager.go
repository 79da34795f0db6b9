package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind tags a token as either an access credential or a refresh credential.
// The tag is the only authorization boundary between "may call protected
// endpoints" and "may mint new token pairs": a stolen access token can never
// be redeemed for a fresh pair, and a refresh token never authenticates an
// ordinary request.
type Kind string

const (
	// KindAccess marks short-lived tokens for ordinary API calls.
	KindAccess Kind = "access"
	// KindRefresh marks long-lived single-use tokens for pair reissuance.
	KindRefresh Kind = "refresh"
)

// ErrMalformed reports a token whose compact form cannot be parsed at all,
// independent of signature validity. It exists for diagnostics; callers map
// it to the same client-visible outcome as any other invalid token.
var ErrMalformed = errors.New("malformed token")

// Config holds the codec parameters. Secret is the shared HS256 signing key;
// both kinds are signed with it and distinguished only by the kind claim.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
}

// Manager encodes, decodes, signs, and verifies compact signed tokens.
// It performs no I/O and is safe for concurrent use.
type Manager struct {
	config Config
}

// Claims is the wire shape of both token kinds: registered sub/iat/exp/iss
// plus the kind tag. The jti is a random UUID so two tokens minted for the
// same subject within the same second are still distinct strings.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a codec for it.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("signing secret must be at least 16 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, errors.New("access TTL must be shorter than refresh TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess produces a signed access token for subject. Pure computation,
// no side effects beyond the signature.
func (m *Manager) IssueAccess(subject string) (string, error) {
	return m.issue(subject, KindAccess, m.config.AccessTTL)
}

// IssueRefresh produces a signed refresh token for subject with the long,
// days-scale lifetime. The caller is responsible for recording it in the
// refresh token store.
func (m *Manager) IssueRefresh(subject string) (string, error) {
	return m.issue(subject, KindRefresh, m.config.RefreshTTL)
}

func (m *Manager) issue(subject string, kind Kind, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}

	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Verify reports whether tokenStr is a structurally valid, correctly signed,
// unexpired token whose subject matches expectedSubject. It fails closed:
// any parse, signature, expiry, or subject mismatch yields false, never an
// error or panic.
func (m *Manager) Verify(tokenStr, expectedSubject string) bool {
	if tokenStr == "" || expectedSubject == "" {
		return false
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(expectedSubject),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return false
	}

	return claims.Subject == expectedSubject
}

// IsRefreshKind inspects the embedded kind claim without verifying the
// signature. Callers must still Verify before trusting the token.
func (m *Manager) IsRefreshKind(tokenStr string) (bool, error) {
	claims, err := m.peek(tokenStr)
	if err != nil {
		return false, err
	}
	return claims.Kind == KindRefresh, nil
}

// Subject decodes the subject claim without verifying the signature and
// returns ErrMalformed when the token cannot be parsed. The result must not
// be trusted until Verify has passed for it.
func (m *Manager) Subject(tokenStr string) (string, error) {
	claims, err := m.peek(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}

func (m *Manager) peek(tokenStr string) (*Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrMalformed
	}

	return claims, nil
}

// AccessTTL exposes the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// RefreshTTL exposes the configured refresh-token lifetime, used as the TTL
// for store insertion.
func (m *Manager) RefreshTTL() time.Duration {
	return m.config.RefreshTTL
}
