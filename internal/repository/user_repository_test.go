package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func userRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "account_status", "created_at", "updated_at"}).
		AddRow("u1", "staff@campus.edu", "$2a$10$hash", "Staff Member", "pending", now, now)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("staff@campus.edu").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "staff@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, models.StatusPending, user.AccountStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("nobody@campus.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@campus.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDefaultsToPending(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "staff@campus.edu", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.StatusPending, user.AccountStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateAccountStatus(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET account_status = $2")).
		WithArgs("u1", models.StatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateAccountStatus(context.Background(), "u1", models.StatusApproved))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET account_status = $2")).
		WithArgs("missing", models.StatusRejected, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdateAccountStatus(context.Background(), "missing", models.StatusRejected), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryHasRole(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_roles WHERE user_id = $1 AND role = $2")).
		WithArgs("u1", models.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	isAdmin, err := repo.HasRole(context.Background(), "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_roles WHERE user_id = $1 AND role = $2")).
		WithArgs("u2", models.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	isAdmin, err = repo.HasRole(context.Background(), "u2", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, isAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "opaque",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
		AddRow("rt1", "u1", "opaque", now.Add(time.Hour), now, false, nil, "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token = $1 LIMIT 1")).
		WithArgs("opaque").
		WillReturnRows(rows)

	stored, err := repo.FindRefreshToken(context.Background(), "opaque")
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.False(t, stored.Revoked)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE")).
		WithArgs("rt1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "rt1", time.Now().UTC()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
