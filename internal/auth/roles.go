package auth

import "context"

// Role is the account role carried in access tokens.
type Role string

const (
	RolePublic   Role = "public"
	RoleGuardian Role = "guardian"
	RoleCoach    Role = "coach"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RolePublic, RoleGuardian, RoleCoach, RoleAdmin:
		return r, true
	}
	return "", false
}

// CanAdminister reports whether the role may act on any payer's records.
func CanAdminister(r Role) bool {
	return r == RoleAdmin
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uint
	Role   Role
}

func (p Principal) IsAdmin() bool { return CanAdminister(p.Role) }

// IsOwner reports whether p is the payer of a record.
func IsOwner(p Principal, payerID uint) bool {
	return p.UserID != 0 && p.UserID == payerID
}

// CanAct is IsOwner or CanAdminister.
func CanAct(p Principal, payerID uint) bool {
	return CanAdminister(p.Role) || IsOwner(p, payerID)
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
