// Package access holds the pure read/write authorization rules for
// posts. It knows nothing about storage or HTTP; callers supply the
// requester, the post and the requester's space membership.
package access

import (
	"pressroom/domain"
)

// Decision is the outcome of a read check.
type Decision int

const (
	Deny Decision = iota
	Allow
	// DenySpaceUnbound is returned for a SPACE-visibility post that has
	// no space attached. The caller must surface this as a
	// membership-required fault, not as an ordinary not-found.
	DenySpaceUnbound
)

// CanRead decides whether u may read p. isMember reports whether u
// belongs to p's space and is only consulted for SPACE visibility.
// A nil or inactive user can read nothing.
func CanRead(u *domain.User, p *domain.Post, isMember bool) Decision {
	if u == nil || !u.IsActive {
		return Deny
	}
	if u.Role == domain.RoleAdmin {
		return Allow
	}
	switch p.Scope.Visibility {
	case domain.VisibilityOrg:
		return Allow
	case domain.VisibilitySpace:
		if p.Scope.SpaceID == "" {
			return DenySpaceUnbound
		}
		if isMember {
			return Allow
		}
		return Deny
	case domain.VisibilityPrivate:
		if u.ID == p.AuthorID || p.Scope.Invited(u.ID) {
			return Allow
		}
		return Deny
	}
	return Deny
}

// CanWrite decides whether u may update, publish or delete p. Only the
// author and admins may write; visibility never widens or narrows
// write access.
func CanWrite(u *domain.User, p *domain.Post) bool {
	if u == nil || !u.IsActive {
		return false
	}
	return u.ID == p.AuthorID || u.Role == domain.RoleAdmin
}

// CanCreate decides whether u may create posts at all.
func CanCreate(u *domain.User) bool {
	if u == nil || !u.IsActive {
		return false
	}
	return u.Role.AtLeast(domain.RoleAuthor)
}
