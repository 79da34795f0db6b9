package tokengate

import "context"

// UserRecord is the stored credential shape the [UserStore] persists.
// Email is the unique, case-sensitive identifier; PasswordHash is a PHC
// digest and never crosses into [Profile].
type UserRecord struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// Profile is the sanitized user view returned to clients. It has no
// password field by construction.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is the login/register response: a token pair plus the profile.
type AuthResult struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         Profile `json:"user"`
}

// UserStore is the credential lookup/persistence collaborator. The engine
// treats it as external: relational or in-memory implementations are the
// host's concern.
//
// FindByEmail returns (nil, nil) when no record matches; errors are
// reserved for backend failures.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *UserRecord) error
}

func profileOf(u UserRecord) Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
