package domain

import (
	"time"
)

type Space struct {
	ID          string
	Key         string
	Name        string
	Description string
	IsPublic    bool
	MemberCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SpaceMember links a user to a space with a per-space role.
type SpaceMember struct {
	SpaceID   string
	UserID    string
	Role      string
	CreatedAt time.Time
}
