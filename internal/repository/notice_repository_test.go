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

func newNoticeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func noticeRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "title", "content", "category", "priority", "content_type",
		"attachment_urls", "link_url", "department", "year", "target_audience",
		"is_published", "scheduled_publish_date", "is_archived", "version",
		"created_by", "created_at", "expires_at", "updated_at",
	}).AddRow(
		"n1", "Midterm Exam Schedule", "Exams begin Monday", "exams", "urgent", "text",
		"{}", nil, nil, nil, "{whole_campus}",
		true, nil, false, 1,
		"u1", now, now.Add(30*24*time.Hour), now,
	)
}

func TestNoticeRepositoryListDashboard(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	archived := false
	mock.ExpectQuery(regexp.QuoteMeta("is_archived = $1") + ".*" + regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(false).
		WillReturnRows(noticeRows())

	list, err := repo.List(context.Background(), models.NoticeFilter{Archived: &archived})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, models.PriorityUrgent, list[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryListPublicOrdersByPriority(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("is_published = TRUE")+".*"+
		regexp.QuoteMeta("scheduled_publish_date IS NULL OR scheduled_publish_date <= NOW()")+".*"+
		regexp.QuoteMeta("CASE priority WHEN 'urgent' THEN 0 WHEN 'important' THEN 1 ELSE 2 END, created_at DESC")).
		WillReturnRows(noticeRows())

	list, err := repo.List(context.Background(), models.NoticeFilter{PublicOnly: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectExec("INSERT INTO notices").
		WillReturnResult(sqlmock.NewResult(1, 1))

	notice := &models.Notice{
		Title:     "Library Hours",
		Content:   "Extended during exams",
		Category:  models.CategoryAcademic,
		Priority:  models.PriorityGeneral,
		CreatedBy: "u1",
	}
	require.NoError(t, repo.Create(context.Background(), notice))

	assert.NotEmpty(t, notice.ID)
	assert.Equal(t, 1, notice.Version)
	assert.Equal(t, notice.CreatedAt.Add(models.NoticeLifetime), notice.ExpiresAt)
	require.Len(t, notice.TargetAudience, 1)
	assert.Equal(t, models.DefaultAudience, notice.TargetAudience[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryUpdateVersionConflict(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectExec("UPDATE notices SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	stale := 3
	err := repo.Update(context.Background(), &models.Notice{ID: "n1", Version: 3}, &stale)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectExec("UPDATE notices SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Notice{ID: "missing"}, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryUpdateBumpsVersion(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectExec("UPDATE notices SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	notice := &models.Notice{ID: "n1", Version: 2}
	require.NoError(t, repo.Update(context.Background(), notice, nil))
	assert.Equal(t, 3, notice.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositorySetArchived(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notices SET is_archived = $2")).
		WithArgs("n1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetArchived(context.Background(), "n1", true))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notices SET is_archived = $2")).
		WithArgs("missing", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SetArchived(context.Background(), "missing", false), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryStats(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectQuery("SELECT").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "drafts", "archived", "urgent"}).
			AddRow(10, 6, 2, 3, 1))

	stats, err := repo.Stats(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 6, stats.Active)
	assert.Equal(t, 2, stats.Drafts)
	assert.Equal(t, 3, stats.Archived)
	assert.Equal(t, 1, stats.Urgent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
