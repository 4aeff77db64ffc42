package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
)

// ErrVersionConflict is returned when an update carries a stale version.
var ErrVersionConflict = errors.New("notice was modified by another writer")

const noticeColumns = `id, title, content, category, priority, content_type, attachment_urls, link_url, department, year, target_audience, is_published, scheduled_publish_date, is_archived, version, created_by, created_at, expires_at, updated_at`

// NoticeRepository provides persistence for notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository creates the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// List returns notices matching the filter. The public feed orders by an
// explicit priority rank (urgent first) with newest-first tiebreak; the
// dashboard orders by creation time only.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Archived != nil {
		where = append(where, fmt.Sprintf("is_archived = $%d", len(args)+1))
		args = append(args, *filter.Archived)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.PublicOnly {
		where = append(where, "is_published = TRUE")
		where = append(where, "is_archived = FALSE")
		where = append(where, "(scheduled_publish_date IS NULL OR scheduled_publish_date <= NOW())")
	}

	order := "created_at DESC"
	if filter.PublicOnly {
		order = "CASE priority WHEN 'urgent' THEN 0 WHEN 'important' THEN 1 ELSE 2 END, created_at DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM notices WHERE %s ORDER BY %s",
		noticeColumns, strings.Join(where, " AND "), order)

	notices := []models.Notice{}
	if err := r.db.SelectContext(ctx, &notices, query, args...); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// GetByID returns a notice by identifier.
func (r *NoticeRepository) GetByID(ctx context.Context, id string) (*models.Notice, error) {
	query := fmt.Sprintf("SELECT %s FROM notices WHERE id = $1", noticeColumns)
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		return nil, err
	}
	return &notice, nil
}

// Create inserts a new notice, filling identifier, timestamps and the
// 30-day default expiry when absent.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = now
	}
	if notice.ExpiresAt.IsZero() {
		notice.ExpiresAt = models.DefaultExpiry(notice.CreatedAt)
	}
	if len(notice.TargetAudience) == 0 {
		notice.TargetAudience = pq.StringArray{models.DefaultAudience}
	}
	notice.Version = 1
	notice.UpdatedAt = now

	const query = `INSERT INTO notices (id, title, content, category, priority, content_type, attachment_urls, link_url, department, year, target_audience, is_published, scheduled_publish_date, is_archived, version, created_by, created_at, expires_at, updated_at)
VALUES (:id, :title, :content, :category, :priority, :content_type, :attachment_urls, :link_url, :department, :year, :target_audience, :is_published, :scheduled_publish_date, :is_archived, :version, :created_by, :created_at, :expires_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// Update modifies an existing notice. When expectedVersion is non-nil the
// write only succeeds against that version; a stale version yields
// ErrVersionConflict. A nil expectedVersion keeps last-writer-wins semantics.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice, expectedVersion *int) error {
	notice.UpdatedAt = time.Now().UTC()

	query := `UPDATE notices SET title = :title, content = :content, category = :category, priority = :priority,
content_type = :content_type, attachment_urls = :attachment_urls, link_url = :link_url, department = :department,
year = :year, target_audience = :target_audience, is_published = :is_published,
scheduled_publish_date = :scheduled_publish_date, is_archived = :is_archived, expires_at = :expires_at,
version = version + 1, updated_at = :updated_at
WHERE id = :id`
	params := map[string]interface{}{
		"id":                     notice.ID,
		"title":                  notice.Title,
		"content":                notice.Content,
		"category":               notice.Category,
		"priority":               notice.Priority,
		"content_type":           notice.ContentType,
		"attachment_urls":        notice.AttachmentURLs,
		"link_url":               notice.LinkURL,
		"department":             notice.Department,
		"year":                   notice.Year,
		"target_audience":        notice.TargetAudience,
		"is_published":           notice.IsPublished,
		"scheduled_publish_date": notice.ScheduledPublishDate,
		"is_archived":            notice.IsArchived,
		"expires_at":             notice.ExpiresAt,
		"updated_at":             notice.UpdatedAt,
	}
	if expectedVersion != nil {
		query += " AND version = :expected_version"
		params["expected_version"] = *expectedVersion
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	if affected == 0 {
		if expectedVersion != nil {
			return ErrVersionConflict
		}
		return sql.ErrNoRows
	}
	notice.Version++
	return nil
}

// SetArchived toggles the archive flag leaving every other field untouched.
func (r *NoticeRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	const query = `UPDATE notices SET is_archived = $2, version = version + 1, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, archived, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archive notice: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a notice permanently.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM notices WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}

// Stats aggregates the dashboard counters. Expiry is advisory: expired
// notices stay listed and only fall out of the active count.
func (r *NoticeRepository) Stats(ctx context.Context, now time.Time) (*models.NoticeStats, error) {
	const query = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE expires_at >= $1 AND NOT is_archived) AS active,
COUNT(*) FILTER (WHERE NOT is_published) AS drafts,
COUNT(*) FILTER (WHERE is_archived) AS archived,
COUNT(*) FILTER (WHERE priority = 'urgent' AND NOT is_archived) AS urgent
FROM notices`
	var stats models.NoticeStats
	row := r.db.QueryRowxContext(ctx, query, now)
	if err := row.Scan(&stats.Total, &stats.Active, &stats.Drafts, &stats.Archived, &stats.Urgent); err != nil {
		return nil, fmt.Errorf("notice stats: %w", err)
	}
	return &stats, nil
}
