package model

import "time"

// Role is the authorization role carried by every authenticated actor.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleClient     Role = "client"
	RoleDriver     Role = "driver"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleClient, RoleDriver:
		return true
	}
	return false
}

// IsAdmin reports whether r carries back-office privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents a registered account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	Email        string
	Phone        string
	CreatedAt    time.Time
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID   int64
	Role Role
}

// Registration carries sign-up data. Only clients and drivers may self-register.
type Registration struct {
	Login    string `validate:"required,min=3,max=64"`
	Password string `validate:"required,min=6,max=72"`
	Role     Role   `validate:"required,oneof=client driver"`
	Email    string `validate:"omitempty,email,max=255"`
	Phone    string `validate:"omitempty,e164"`
}
