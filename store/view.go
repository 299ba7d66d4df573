package store

import (
	"context"

	"github.com/google/uuid"
)

// RecordView writes the view record emitted by a successful single
// read. userID may be empty for anonymous views.
func (s *Store) RecordView(ctx context.Context, postID, userID, ip, userAgent string) error {
	var uid any
	if userID != "" {
		uid = userID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO views (id, post_id, user_id, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), postID, uid, ip, userAgent, now(),
	)
	return err
}

// CountViews returns the number of view records for a post.
func (s *Store) CountViews(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM views WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}
