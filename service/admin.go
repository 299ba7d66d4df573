package service

import (
	"context"
	"fmt"

	"pressroom/domain"
)

// SetUserRole is the administrative role change. Roles are immutable
// through every other path.
func (s *Service) SetUserRole(ctx context.Context, requester *domain.User, userID string, role domain.Role) error {
	if err := requireActive(requester); err != nil {
		return err
	}
	if requester.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	affected, err := s.store.SetRole(ctx, userID, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetUserActive activates or deactivates an account. Admins only.
func (s *Service) SetUserActive(ctx context.Context, requester *domain.User, userID string, active bool) error {
	if err := requireActive(requester); err != nil {
		return err
	}
	if requester.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	affected, err := s.store.SetActive(ctx, userID, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
