package flows

import "context"

// ProfileErrors carries host-level sentinel errors for profile lookup.
type ProfileErrors struct {
	EngineNotReady     error
	UserNotFound       error
	AccountUnavailable error
}

// ProfileDeps captures profile lookup dependencies.
type ProfileDeps struct {
	FindByEmail func(context.Context, string) (*CredentialRecord, error)
	Errors      ProfileErrors
}

// RunProfile resolves the credential record for an already-authenticated
// subject. Callers must not hand untrusted input here; the subject comes
// from a verified token.
func RunProfile(ctx context.Context, email string, deps ProfileDeps) (*CredentialRecord, error) {
	if deps.FindByEmail == nil {
		return nil, deps.Errors.EngineNotReady
	}

	user, err := deps.FindByEmail(ctx, email)
	if err != nil {
		return nil, deps.Errors.AccountUnavailable
	}
	if user == nil {
		return nil, deps.Errors.UserNotFound
	}

	return user, nil
}
