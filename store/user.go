package store

import (
	"context"
	"database/sql"

	"pressroom/domain"
)

// CreateUser inserts a user with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, u *domain.User, passwordHash string) error {
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, passwordHash, u.Role.String(), u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, string, error) {
	var (
		u         domain.User
		hash      string
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &hash, &role, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, "", err
	}
	u.Role, _ = domain.ParseRole(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, hash, nil
}

const userColumns = `id, email, name, password, role, is_active, last_login_at, created_at, updated_at`

// GetUserByID returns the user or sql.ErrNoRows.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, _, err := scanUser(row)
	return u, err
}

// GetCredentials returns the user and stored password hash for a login
// attempt, or sql.ErrNoRows.
func (s *Store) GetCredentials(ctx context.Context, email string) (*domain.User, string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// TouchLastLogin stamps a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`, now(), now(), id)
	return err
}

// SetRole is the administrative role-change action. Returns rows
// affected so the caller can detect a missing user.
func (s *Store) SetRole(ctx context.Context, id string, role domain.Role) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, role.String(), now(), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetActive flips a user's active flag.
func (s *Store) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, active, now(), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UserIDsByEmail resolves invitee emails to user IDs. Emails with no
// matching user are simply absent from the result.
func (s *Store) UserIDsByEmail(ctx context.Context, emails []string) (map[string]string, error) {
	ids := make(map[string]string, len(emails))
	for _, email := range emails {
		var id string
		err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		ids[email] = id
	}
	return ids, nil
}
