package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examly/examly-backend/internal/model"
)

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name, role, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureExists inserts a user on first sign-in with the student role.
// Existing users are left untouched; the current row is returned either way.
func (r *UserRepository) EnsureExists(ctx context.Context, email, displayName string) (*model.User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (email, display_name, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO NOTHING`,
		email, displayName, model.RoleStudent,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, email)
}

// UpsertTeacher creates or promotes a teacher account with a local password
// hash. Used by the create-teacher CLI only.
func (r *UserRepository) UpsertTeacher(ctx context.Context, email, displayName, passwordHash string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, display_name, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE
		 SET display_name = EXCLUDED.display_name,
		     role = EXCLUDED.role,
		     password_hash = EXCLUDED.password_hash,
		     updated_at = NOW()
		 RETURNING id, email, display_name, role, password_hash, created_at, updated_at`,
		email, displayName, model.RoleTeacher, passwordHash,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
