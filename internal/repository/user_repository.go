package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
)

const userColumns = `id, email, password_hash, full_name, account_status, created_at, updated_at`

// UserRepository provides database access for identities, role grants and
// refresh token sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1 LIMIT 1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1 LIMIT 1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// List returns every identity ordered newest-first for the admin panel.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC", userColumns)
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a new user row. The identity is created atomically with the
// signup: there is no separate profile record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.AccountStatus == "" {
		user.AccountStatus = models.StatusPending
	}

	const query = `INSERT INTO users (id, email, password_hash, full_name, account_status, created_at, updated_at)
VALUES (:id, :email, :password_hash, :full_name, :account_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateAccountStatus sets the approval status for a user.
func (r *UserRepository) UpdateAccountStatus(ctx context.Context, id string, status models.AccountStatus) error {
	const query = `UPDATE users SET account_status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddRole grants a role to a user.
func (r *UserRepository) AddRole(ctx context.Context, userID string, role models.Role) error {
	const query = `INSERT INTO user_roles (id, user_id, role) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, role); err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	return nil
}

// HasRole reports whether a role row exists for the user.
func (r *UserRepository) HasRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	const query = `SELECT COUNT(*) FROM user_roles WHERE user_id = $1 AND role = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, role); err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return count > 0, nil
}

// CreateRefreshToken persists a refresh token session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent)
VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken loads a refresh token session by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &stored, nil
}

// RevokeRefreshToken marks a single session as revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
