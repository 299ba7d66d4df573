// Package service is the lifecycle controller for posts. It enforces
// role gates, visibility rules and version recording on top of the
// store; handlers stay free of business rules.
//
// Every operation takes the requester explicitly. A nil requester is
// an unauthenticated caller; an inactive requester is refused outright.
package service

import (
	"context"
	"time"

	"pressroom/domain"
	"pressroom/store"
)

type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

// requireActive screens out unauthenticated and deactivated callers
// before any resource is touched.
func requireActive(u *domain.User) error {
	if u == nil {
		return domain.ErrUnauthenticated
	}
	if !u.IsActive {
		return domain.ErrForbidden
	}
	return nil
}

// Ping exposes store health to the health endpoint.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
