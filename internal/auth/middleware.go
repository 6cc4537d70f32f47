package auth

import (
	"context"
	"net/http"
)

// contextKey is unexported so only this package can read or write the
// identity value in a request context — no key collisions with other
// packages.
type contextKey string

const identityKey contextKey = "identity"

// CookieName is the session cookie holding the JWT.
const CookieName = "token"

// RequireIdentity enforces authentication on protected routes.
//
// It reads the JWT from the HttpOnly session cookie, validates it, and
// stores the Identity in the request context. Missing or invalid
// tokens stop the chain with 401 — the Unauthorized contract for every
// protected endpoint.
func RequireIdentity(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity set by
// RequireIdentity. ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Subject != ""
}

func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, err
	}
	return tokens.Validate(cookie.Value)
}
