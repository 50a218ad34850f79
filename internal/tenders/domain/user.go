package domain

import (
	"strings"
	"time"
)

// Roles understood by the capability check.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string // argon2id PHC or bcrypt
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// NormalizeRole maps free text onto one of the known roles, defaulting to
// RoleUser.
func NormalizeRole(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// NormalizeEmail is applied on every write and lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
