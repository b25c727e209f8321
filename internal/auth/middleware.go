package auth

import (
	"net/http"
	"strings"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/rbac"
)

// ErrorWriter renders an error response; the HTTP layer supplies its own so
// auth failures share the API's error shape.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// JWTMiddleware resolves the bearer token to a user and stores both the user
// and its role on the request context.
func JWTMiddleware(s *Service, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				onError(w, r, apperr.Auth("Not authenticated"))
				return
			}
			u, err := s.ResolveToken(r.Context(), strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			if err != nil {
				onError(w, r, err)
				return
			}
			ctx := WithUser(r.Context(), u)
			ctx = rbac.WithRole(ctx, string(u.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
