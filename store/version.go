package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"pressroom/domain"
)

// insertVersion appends the next version snapshot for a post and
// returns its number. The number is computed by the insert statement
// itself, so within a transaction the read-max-then-insert pair cannot
// interleave with another writer; the (post_id, version) unique index
// guards the rest.
func insertVersion(ctx context.Context, tx *sql.Tx, postID, title, content string) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO post_versions (id, post_id, title, content, version, created_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(version), 0) + 1 FROM post_versions WHERE post_id = ?), ?)
		RETURNING version`,
		uuid.NewString(), postID, title, content, postID, now(),
	).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// ListVersions returns a post's version history, newest first. There
// is deliberately no update or delete for version rows; the ledger
// only shrinks as a cascade of post deletion.
func (s *Store) ListVersions(ctx context.Context, postID string) ([]*domain.PostVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, title, content, version, created_at
		FROM post_versions WHERE post_id = ? ORDER BY version DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.PostVersion
	for rows.Next() {
		v := &domain.PostVersion{}
		if err := rows.Scan(&v.ID, &v.PostID, &v.Title, &v.Content, &v.Version, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
