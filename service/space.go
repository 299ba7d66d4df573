package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pressroom/domain"
	"pressroom/slug"
)

// CreateSpace creates a collaboration space. Requires EDITOR or
// better; the creator is enrolled as its first member.
func (s *Service) CreateSpace(ctx context.Context, requester *domain.User, name, description string, isPublic bool) (*domain.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "required")
	}
	if err := requireActive(requester); err != nil {
		return nil, err
	}
	if !requester.Role.AtLeast(domain.RoleEditor) {
		return nil, domain.ErrForbidden
	}

	sp := &domain.Space{
		ID:          uuid.NewString(),
		Key:         slug.Make(name),
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
	}
	if err := s.store.CreateSpace(ctx, sp); err != nil {
		return nil, fmt.Errorf("create space: %w", err)
	}
	if err := s.store.AddMember(ctx, sp.ID, requester.ID, "OWNER"); err != nil {
		return nil, fmt.Errorf("enroll creator: %w", err)
	}
	sp.MemberCount = 1
	return sp, nil
}

// ListSpaces lists all spaces with member counts. Any active user may
// see the catalogue; membership still gates the posts inside.
func (s *Service) ListSpaces(ctx context.Context, requester *domain.User) ([]*domain.Space, error) {
	if err := requireActive(requester); err != nil {
		return nil, err
	}
	spaces, err := s.store.ListSpaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

// AddSpaceMember adds or re-roles a member. Allowed for admins and for
// the space's own OWNER members.
func (s *Service) AddSpaceMember(ctx context.Context, requester *domain.User, spaceID, userID, role string) error {
	if role == "" {
		role = "MEMBER"
	}
	if err := requireActive(requester); err != nil {
		return err
	}
	if _, err := s.store.GetSpace(ctx, spaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get space: %w", err)
	}
	if requester.Role != domain.RoleAdmin {
		memberRole, err := s.store.MemberRole(ctx, spaceID, requester.ID)
		if err != nil {
			return fmt.Errorf("membership check: %w", err)
		}
		if memberRole != "OWNER" {
			return domain.ErrForbidden
		}
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invalid("userId", "unknown user")
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.store.AddMember(ctx, spaceID, userID, role); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}
