package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/interntrack/pkg/models"
)

const userColumns = `id, username, email, password_hash, updated`

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("create user: %w", errNilArg)
	}

	id := newID()
	updated := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, updated) VALUES (?, ?, ?, ?, ?)`,
		id, u.Username, models.NormalizeEmail(u.Email), u.PasswordHash, updated)
	if err != nil {
		return "", mapErr("create user", err)
	}

	u.ID = id
	u.Email = models.NormalizeEmail(u.Email)
	u.Updated = updated
	return id, nil
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, models.NormalizeEmail(email))
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *SQLiteRepo) getUser(ctx context.Context, query, key string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, query, key)
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("update user: %w", errNilArg)
	}

	updated := now()
	res, err := r.conn.Exec(ctx, `UPDATE users SET username = ?, email = ?, password_hash = ?, updated = ? WHERE id = ?`,
		u.Username, models.NormalizeEmail(u.Email), u.PasswordHash, updated, u.ID)
	if err != nil {
		return mapErr("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("user", u.ID)
	}
	u.Updated = updated
	return nil
}

// DeleteUser removes the user together with every internship they own.
func (r *SQLiteRepo) DeleteUser(ctx context.Context, id string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM internship_links WHERE internship_id IN (SELECT id FROM internships WHERE user_id = ?)`, id); err != nil {
		return fmt.Errorf("delete user links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM internships WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete user internships: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("user", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Info("user deleted", "user_id", id)
	return nil
}
