// Package tenancy carries the authenticated principal through a request.
package tenancy

import "context"

type ctxKey string

const principalKey ctxKey = "salesagent.principal"

// Role values stored on users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the caller resolved from a session token.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the principal may act on a resource owned by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	if p.IsAdmin() {
		return true
	}
	return ownerID != "" && p.UserID == ownerID
}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the principal if present.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey)
	if val == nil {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	return p, ok && p.UserID != ""
}
