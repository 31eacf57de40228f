package admin

import "time"

// Role values for the two admin tiers.
const (
	RoleSuper     = "super"
	RoleSecondary = "secondary"
)

// Admin is a back-office account. Secondary admins manage scouts;
// super admins additionally manage other admins.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ValidRole reports whether role is one of the two known tiers.
func ValidRole(role string) bool {
	return role == RoleSuper || role == RoleSecondary
}
