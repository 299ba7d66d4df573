package store

import (
	"context"
	"database/sql"
	"errors"

	"pressroom/domain"
)

// CreateSpace inserts a space. The unique index on key surfaces
// duplicates as a constraint error.
func (s *Store) CreateSpace(ctx context.Context, sp *domain.Space) error {
	sp.CreatedAt = now()
	sp.UpdatedAt = sp.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spaces (id, key, name, description, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.Key, sp.Name, sp.Description, sp.IsPublic, sp.CreatedAt, sp.UpdatedAt,
	)
	return err
}

// GetSpace returns the space or sql.ErrNoRows.
func (s *Store) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	sp := &domain.Space{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, key, name, description, is_public, created_at, updated_at
		FROM spaces WHERE id = ?`, id,
	).Scan(&sp.ID, &sp.Key, &sp.Name, &sp.Description, &sp.IsPublic, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// ListSpaces returns all spaces with their member counts.
func (s *Store) ListSpaces(ctx context.Context) ([]*domain.Space, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.key, s.name, s.description, s.is_public,
		       (SELECT COUNT(*) FROM space_members m WHERE m.space_id = s.id),
		       s.created_at, s.updated_at
		FROM spaces s ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []*domain.Space
	for rows.Next() {
		sp := &domain.Space{}
		if err := rows.Scan(&sp.ID, &sp.Key, &sp.Name, &sp.Description, &sp.IsPublic,
			&sp.MemberCount, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, err
		}
		spaces = append(spaces, sp)
	}
	return spaces, rows.Err()
}

// AddMember upserts a space membership with a per-space role.
func (s *Store) AddMember(ctx context.Context, spaceID, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO space_members (space_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (space_id, user_id) DO UPDATE SET role = excluded.role`,
		spaceID, userID, role, now(),
	)
	return err
}

// MemberRole returns the user's per-space role, or "" when the user is
// not a member.
func (s *Store) MemberRole(ctx context.Context, spaceID, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM space_members WHERE space_id = ? AND user_id = ?`,
		spaceID, userID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// IsMember reports whether the user belongs to the space.
func (s *Store) IsMember(ctx context.Context, spaceID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM space_members WHERE space_id = ? AND user_id = ?`,
		spaceID, userID,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
