package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) interfaces.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash, role, is_active, last_login_at, created_at`

func scanUser(row Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *userRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`, email, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) exec(ctx context.Context, id int, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id int, role domain.Role) error {
	return r.exec(ctx, id, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

func (r *userRepository) SetActive(ctx context.Context, id int, active bool) error {
	return r.exec(ctx, id, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	return r.exec(ctx, id, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
}
