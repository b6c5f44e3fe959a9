package auth

import (
	"net/http"
	"strings"
)

// Middleware resolves the caller from either a Bearer access token or the
// session cookie and attaches the user id to the request context.
// Requests without valid credentials pass through anonymous; route handlers
// decide whether authentication is required.
func Middleware(tokens *TokenManager, sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := resolve(tokens, sessions, r); ok {
				r = r.WithContext(WithUserID(r.Context(), uid))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(tokens *TokenManager, sessions *Sessions, r *http.Request) (uint, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			claims, err := tokens.VerifyAccess(parts[1])
			if err == nil {
				return claims.UserID, true
			}
		}
		return 0, false
	}
	return sessions.Parse(r)
}
