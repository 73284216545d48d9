package auth

import (
	"net/http"
	"strings"

	"github.com/cheerclub/billing-api/internal/apperr"
)

// Verifier turns a bearer token into a principal.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// Middleware authenticates the bearer token against each verifier in order.
func Middleware(verifiers ...Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				apperr.Write(w, nil, apperr.Unauthorized("missing bearer token"))
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			for _, v := range verifiers {
				p, err := v.Verify(raw)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
					return
				}
			}
			apperr.Write(w, nil, apperr.Unauthorized("invalid token"))
		})
	}
}

// RequireAdmin rejects callers whose role cannot administer.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok || !CanAdminister(p.Role) {
			apperr.Write(w, nil, apperr.Forbidden("admin only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
