package domain

import (
	"time"
)

// Role is an ordered capability tier. Higher tiers include every
// capability of the tiers below them.
type Role int

const (
	RoleReader Role = iota
	RoleAuthor
	RoleEditor
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleReader: "READER",
	RoleAuthor: "AUTHOR",
	RoleEditor: "EDITOR",
	RoleAdmin:  "ADMIN",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "UNKNOWN"
}

// AtLeast reports whether the role grants the capabilities of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole maps a stored role name back to a Role.
func ParseRole(s string) (Role, bool) {
	for r, name := range roleNames {
		if name == s {
			return r, true
		}
	}
	return RoleReader, false
}

type User struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
