package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Authenticator resolves a bearer token to the account behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (tenancy.Principal, error)
}

var (
	errMissingToken  = apperr.New(apperr.KindUnauthorized, "authentication required")
	errAdminRequired = apperr.New(apperr.KindForbidden, "Admin access required")
)

// RequireAuth rejects requests without a valid bearer token and stores the
// principal on the request context.
func RequireAuth(authn Authenticator, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, r, logger, errMissingToken)
				return
			}
			p, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				respond.Error(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(tenancy.WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth attaches the principal when a valid token is present and lets
// anonymous or badly authenticated requests through untouched.
func OptionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if p, err := authn.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(tenancy.WithPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := tenancy.PrincipalFromContext(r.Context())
			if !ok {
				respond.Error(w, r, logger, errMissingToken)
				return
			}
			if !p.IsAdmin() {
				respond.Error(w, r, logger, errAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
