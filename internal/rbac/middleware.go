package rbac

import (
	"encoding/json"
	"net/http"
)

// Require rejects the request with 403 unless the role on the context holds
// perm under DefaultPolicy.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !DefaultPolicy.Allows(RoleFromContext(r.Context()), perm) {
				deny(w, DenialMessage(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
