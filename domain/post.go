package domain

import (
	"time"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityOrg     Visibility = "ORG"
	VisibilitySpace   Visibility = "SPACE"
	VisibilityPrivate Visibility = "PRIVATE"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityOrg, VisibilitySpace, VisibilityPrivate:
		return true
	}
	return false
}

// Scope couples a post's visibility with the data that visibility
// depends on. SpaceID is meaningful only for SPACE, Invitees only for
// PRIVATE; Validate rejects every other combination.
type Scope struct {
	Visibility Visibility
	SpaceID    string
	Invitees   []string // user IDs granted read access to a PRIVATE post
}

func OrgScope() Scope {
	return Scope{Visibility: VisibilityOrg}
}

func SpaceScope(spaceID string) Scope {
	return Scope{Visibility: VisibilitySpace, SpaceID: spaceID}
}

func PrivateScope(invitees ...string) Scope {
	return Scope{Visibility: VisibilityPrivate, Invitees: invitees}
}

func (s Scope) Validate() error {
	if !s.Visibility.Valid() {
		return Invalid("visibility", "must be ORG, SPACE or PRIVATE")
	}
	switch s.Visibility {
	case VisibilitySpace:
		if s.SpaceID == "" {
			return Invalid("spaceId", "required for SPACE visibility")
		}
		if len(s.Invitees) > 0 {
			return Invalid("invitees", "only allowed for PRIVATE visibility")
		}
	case VisibilityPrivate:
		if s.SpaceID != "" {
			return Invalid("spaceId", "only allowed for SPACE visibility")
		}
	default:
		if s.SpaceID != "" {
			return Invalid("spaceId", "only allowed for SPACE visibility")
		}
		if len(s.Invitees) > 0 {
			return Invalid("invitees", "only allowed for PRIVATE visibility")
		}
	}
	return nil
}

// Invited reports whether the user ID is on the PRIVATE allow-list.
func (s Scope) Invited(userID string) bool {
	for _, id := range s.Invitees {
		if id == userID {
			return true
		}
	}
	return false
}

type Post struct {
	ID            string
	Slug          string
	Title         string
	Excerpt       string
	Content       string
	FeaturedImage string
	Status        Status
	Scope         Scope
	AuthorID      string
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PublishedAt   *time.Time
}
