package auth

import (
	"context"
	"strings"
)

type contextKey string

const principalKey contextKey = "principal"

// RoleAdmin is the role allowed through RequireRole("ADMIN").
const RoleAdmin = "ADMIN"

// Principal is the authenticated caller resolved from a token.
type Principal struct {
	ID      string
	Role    string
	TokenID string
	Expires int64
}

// HasRole reports whether the principal holds role. Roles compare case-insensitively.
func (p Principal) HasRole(role string) bool {
	return strings.EqualFold(p.Role, role)
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// WithPrincipal は context に Principal をセットする
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext は context から Principal を取得する
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// UserIDFromContext は context から userID を取得する
func UserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.ID == "" {
		return "", false
	}
	return p.ID, true
}
