package middleware

import (
	"errors"
	"net/http"
	"strings"

	tokengate "github.com/veranyon/tokengate"
)

// Authenticator returns middleware that resolves the request identity from
// an Authorization bearer token. Paths under any bypass prefix are passed
// through untouched (the token endpoints themselves live there).
//
// A missing, malformed, expired, or forged token does NOT reject the
// request: the middleware forwards it unauthenticated and leaves the
// access decision to the route. The single exception is a refresh-kind
// token, which is rejected with 401 outright so long-lived refresh tokens
// never double as access credentials.
func Authenticator(engine *tokengate.Engine, bypassPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range bypassPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, tokengate.ErrRefreshTokenForbidden) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(tokengate.WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
