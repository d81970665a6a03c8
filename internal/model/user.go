package model

import (
	"errors"
	"time"
)

// User is a registered identity. The same username may exist once per role.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is one of the closed set of positions a user can register under.
type Role string

// Roles.
const (
	RoleAdmin      Role = "Admin"
	RoleIT         Role = "IT"
	RoleManager    Role = "Manager"
	RoleSupervisor Role = "Supervisor"
	RoleAudit      Role = "Audit"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleIT, RoleManager, RoleSupervisor, RoleAudit}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// MaxPasswordBytes is the longest secret bcrypt will hash.
const MaxPasswordBytes = 72

// ValidatePassword checks that a credential can be hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password required")
	}
	if len(password) > MaxPasswordBytes {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}
