package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pressroom/domain"
	"pressroom/slug"
)

const postColumns = `id, slug, title, excerpt, content, featured_image, status, visibility, author_id, space_id, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*domain.Post, error) {
	var (
		p           domain.Post
		spaceID     sql.NullString
		publishedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.FeaturedImage,
		&p.Status, &p.Scope.Visibility, &p.AuthorID, &spaceID, &publishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Scope.SpaceID = spaceID.String
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

// CreatePost inserts a post, its invitee and tag links and version 1 in
// one transaction. The final slug is picked from baseSlug inside the
// transaction so that two concurrent creations with colliding titles
// cannot end up with the same slug; the unique index on posts.slug is
// the backstop.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post, baseSlug string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	taken := func(candidate string) bool {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM posts WHERE slug = ?`, candidate).Scan(&n); err != nil {
			return true // treat a failed probe as taken; the insert will surface the error
		}
		return n > 0
	}
	p.Slug = slug.Pick(baseSlug, taken)

	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	var spaceID any
	if p.Scope.SpaceID != "" {
		spaceID = p.Scope.SpaceID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (id, slug, title, excerpt, content, featured_image, status, visibility, author_id, space_id, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.Title, p.Excerpt, p.Content, p.FeaturedImage,
		string(p.Status), string(p.Scope.Visibility), p.AuthorID, spaceID, p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := replaceInvitees(ctx, tx, p.ID, p.Scope.Invitees); err != nil {
		return err
	}
	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	if _, err := insertVersion(ctx, tx, p.ID, p.Title, p.Content); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPost loads a post with its invitees and tags, or sql.ErrNoRows.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if p.Scope.Invitees, err = s.postInvitees(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Tags, err = s.postTags(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePost persists the full post row and its tag/invitee sets. When
// recordVersion is set, a new version row is appended in the same
// transaction and its number returned; the number is assigned by the
// insert itself, so concurrent updates cannot collide.
func (s *Store) UpdatePost(ctx context.Context, p *domain.Post, recordVersion bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	version := 0
	if recordVersion {
		if version, err = insertVersion(ctx, tx, p.ID, p.Title, p.Content); err != nil {
			return 0, err
		}
	}

	p.UpdatedAt = now()
	var spaceID any
	if p.Scope.SpaceID != "" {
		spaceID = p.Scope.SpaceID
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, excerpt = ?, content = ?, featured_image = ?, status = ?, visibility = ?, space_id = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Excerpt, p.Content, p.FeaturedImage, string(p.Status), string(p.Scope.Visibility),
		spaceID, p.PublishedAt, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, sql.ErrNoRows
	}
	if err := replaceInvitees(ctx, tx, p.ID, p.Scope.Invitees); err != nil {
		return 0, err
	}
	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return 0, err
	}
	return version, tx.Commit()
}

// DeletePost removes a post; versions, invitees, tag links and views
// cascade. Returns rows affected.
func (s *Store) DeletePost(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) postInvitees(ctx context.Context, postID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM post_invitees WHERE post_id = ? ORDER BY user_id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) postTags(ctx context.Context, postID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ? ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// replaceInvitees makes the stored allow-list exactly ids.
func replaceInvitees(ctx context.Context, tx *sql.Tx, postID string, ids []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_invitees WHERE post_id = ?`, postID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_invitees (post_id, user_id) VALUES (?, ?)`, postID, id); err != nil {
			return err
		}
	}
	return nil
}

// replaceTags makes the stored tag set exactly names, creating missing
// tag rows on the fly.
func replaceTags(ctx context.Context, tx *sql.Tx, postID string, names []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (id, name, slug) VALUES (?, ?, ?)`,
			uuid.NewString(), name, slug.Make(name)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO post_tags (post_id, tag_id)
			SELECT ?, id FROM tags WHERE name = ?`, postID, name); err != nil {
			return err
		}
	}
	return nil
}

// ListFilter narrows ListPosts. Zero values mean "no filter"; Status
// defaults are the caller's concern.
type ListFilter struct {
	Status     domain.Status
	Visibility domain.Visibility
	SpaceID    string
	AuthorID   string
	Tag        string
	Search     string
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

var sortColumns = map[string]string{
	"publishedAt": "published_at",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"title":       "title",
}

// ListPosts returns the page of posts the viewer may read plus the
// total count under the same predicate. The visibility clause is the
// query-time equivalent of access.CanRead: non-admin viewers see ORG
// posts, SPACE posts in spaces they belong to, and PRIVATE posts they
// authored or were invited to.
func (s *Store) ListPosts(ctx context.Context, viewer *domain.User, f ListFilter) ([]*domain.Post, int, error) {
	where := []string{"1=1"}
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Visibility != "" {
		where = append(where, "visibility = ?")
		args = append(args, string(f.Visibility))
	}
	if f.SpaceID != "" {
		where = append(where, "space_id = ?")
		args = append(args, f.SpaceID)
	}
	if f.AuthorID != "" {
		where = append(where, "author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.Tag != "" {
		where = append(where, `id IN (
			SELECT pt.post_id FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.name LIKE ? OR t.slug LIKE ?)`)
		pattern := "%" + f.Tag + "%"
		args = append(args, pattern, pattern)
	}
	if f.Search != "" {
		where = append(where, "(title LIKE ? OR content LIKE ? OR excerpt LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if viewer.Role != domain.RoleAdmin {
		where = append(where, `(
			visibility = 'ORG'
			OR (visibility = 'SPACE' AND space_id IN (SELECT space_id FROM space_members WHERE user_id = ?))
			OR (visibility = 'PRIVATE' AND (author_id = ? OR id IN (SELECT post_id FROM post_invitees WHERE user_id = ?))))`)
		args = append(args, viewer.ID, viewer.ID, viewer.ID)
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := sortColumns[f.SortBy]
	if !ok {
		sortCol = "published_at"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		postColumns, clause, sortCol, order)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, p := range posts {
		if p.Tags, err = s.postTags(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}
