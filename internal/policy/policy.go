// Package policy decides what an authenticated identity may do. It knows
// nothing about tokens or HTTP; callers hand it the identity they trust.
package policy

import (
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
)

// Role names as stored on users and embedded in tokens.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Identity is who is calling.
type Identity struct {
	UserID uint
	Role   string
}

// ErrForbidden is returned when the identity lacks the required role.
var ErrForbidden = apperrors.Forbidden(apperrors.AuthzForbidden, "You do not have permission to perform this action")

// ValidRole reports whether role is one a user may hold.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}

// RequireRole permits the call only when identity holds exactly role.
func RequireRole(identity Identity, role string) error {
	if identity.Role != role {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin is RequireRole(identity, RoleAdmin).
func RequireAdmin(identity Identity) error {
	return RequireRole(identity, RoleAdmin)
}
