package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/events"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/repository"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
)

const feedCacheKey = "feed:public"

type noticeRepository interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error)
	GetByID(ctx context.Context, id string) (*models.Notice, error)
	Create(ctx context.Context, notice *models.Notice) error
	Update(ctx context.Context, notice *models.Notice, expectedVersion *int) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*models.NoticeStats, error)
}

type feedCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NoticeService handles notice workflows and the public feed.
type NoticeService struct {
	repo      noticeRepository
	cache     feedCache
	hub       *events.Hub
	validator *validator.Validate
	logger    *zap.Logger
	feedTTL   time.Duration
}

// NewNoticeService constructs the service. Cache and hub may be nil; the
// service then serves uncached and broadcasts nothing.
func NewNoticeService(repo noticeRepository, cache feedCache, hub *events.Hub, validate *validator.Validate, logger *zap.Logger, feedTTL time.Duration) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if feedTTL <= 0 {
		feedTTL = 30 * time.Second
	}
	svc := &NoticeService{repo: repo, cache: cache, hub: hub, validator: validate, logger: logger, feedTTL: feedTTL}
	svc.validator.RegisterValidation("noticecategory", func(fl validator.FieldLevel) bool {
		return models.ValidCategory(fl.Field().String())
	})
	svc.validator.RegisterValidation("noticepriority", func(fl validator.FieldLevel) bool {
		return models.ValidPriority(fl.Field().String())
	})
	svc.validator.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
		return models.ValidContentType(fl.Field().String())
	})
	return svc
}

// CreateNoticeRequest describes the create payload. Omitted enum fields fall
// back to the documented defaults.
type CreateNoticeRequest struct {
	Title                string     `json:"title" validate:"required"`
	Content              string     `json:"content" validate:"required"`
	Category             string     `json:"category" validate:"omitempty,noticecategory"`
	Priority             string     `json:"priority" validate:"omitempty,noticepriority"`
	ContentType          string     `json:"content_type" validate:"omitempty,contenttype"`
	AttachmentURLs       []string   `json:"attachment_urls"`
	LinkURL              *string    `json:"link_url" validate:"omitempty,url"`
	Department           *string    `json:"department"`
	Year                 *string    `json:"year"`
	TargetAudience       []string   `json:"target_audience"`
	IsPublished          *bool      `json:"is_published"`
	ScheduledPublishDate *time.Time `json:"scheduled_publish_date"`
}

// UpdateNoticeRequest describes the update payload. A non-nil Version turns
// on the optimistic concurrency check; omitting it keeps last-writer-wins.
type UpdateNoticeRequest struct {
	Title                string     `json:"title" validate:"required"`
	Content              string     `json:"content" validate:"required"`
	Category             string     `json:"category" validate:"omitempty,noticecategory"`
	Priority             string     `json:"priority" validate:"omitempty,noticepriority"`
	ContentType          string     `json:"content_type" validate:"omitempty,contenttype"`
	AttachmentURLs       []string   `json:"attachment_urls"`
	LinkURL              *string    `json:"link_url" validate:"omitempty,url"`
	Department           *string    `json:"department"`
	Year                 *string    `json:"year"`
	TargetAudience       []string   `json:"target_audience"`
	IsPublished          *bool      `json:"is_published"`
	ScheduledPublishDate *time.Time `json:"scheduled_publish_date"`
	Version              *int       `json:"version"`
}

// FeedResponse is the public feed payload: the filtered notice list plus the
// urgent band computed over the unfiltered set.
type FeedResponse struct {
	Notices []models.Notice `json:"notices"`
	Urgent  []models.Notice `json:"urgent"`
}

// List returns dashboard notices newest-first. The search term is applied as
// a case-insensitive substring match over title and content of the fetched
// set, mirroring the board's original client-side search.
func (s *NoticeService) List(ctx context.Context, archived *bool, search string) ([]models.Notice, error) {
	rows, err := s.repo.List(ctx, models.NoticeFilter{Archived: archived})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	if search == "" {
		return rows, nil
	}
	matched := make([]models.Notice, 0, len(rows))
	for _, notice := range rows {
		if notice.MatchesSearch(search) {
			matched = append(matched, notice)
		}
	}
	return matched, nil
}

// Get returns a notice by id.
func (s *NoticeService) Get(ctx context.Context, id string) (*models.Notice, error) {
	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get notice")
	}
	return notice, nil
}

// Create registers a new notice owned by the acting identity.
func (s *NoticeService) Create(ctx context.Context, actorID string, req CreateNoticeRequest) (*models.Notice, error) {
	if actorID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "you must be signed in to create a notice")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	notice := &models.Notice{
		Title:                req.Title,
		Content:              req.Content,
		Category:             models.NoticeCategory(defaultString(req.Category, string(models.CategoryAcademic))),
		Priority:             models.NoticePriority(defaultString(req.Priority, string(models.PriorityGeneral))),
		ContentType:          models.NoticeContentType(defaultString(req.ContentType, string(models.ContentTypeText))),
		AttachmentURLs:       pq.StringArray(req.AttachmentURLs),
		LinkURL:              req.LinkURL,
		Department:           req.Department,
		Year:                 req.Year,
		TargetAudience:       pq.StringArray(req.TargetAudience),
		IsPublished:          true,
		ScheduledPublishDate: req.ScheduledPublishDate,
		CreatedBy:            actorID,
	}
	if req.IsPublished != nil {
		notice.IsPublished = *req.IsPublished
	}
	if err := validateContentVariant(notice); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}
	s.notifyChange(events.EventNoticeCreated, notice.ID)
	return notice, nil
}

// Update modifies an existing notice. created_by, created_at and expires_at
// are immutable here; expiry follows the creation time, not the edit time.
func (s *NoticeService) Update(ctx context.Context, id string, req UpdateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}

	existing.Title = req.Title
	existing.Content = req.Content
	existing.Category = models.NoticeCategory(defaultString(req.Category, string(existing.Category)))
	existing.Priority = models.NoticePriority(defaultString(req.Priority, string(existing.Priority)))
	existing.ContentType = models.NoticeContentType(defaultString(req.ContentType, string(existing.ContentType)))
	existing.AttachmentURLs = pq.StringArray(req.AttachmentURLs)
	existing.LinkURL = req.LinkURL
	existing.Department = req.Department
	existing.Year = req.Year
	if len(req.TargetAudience) > 0 {
		existing.TargetAudience = pq.StringArray(req.TargetAudience)
	}
	if req.IsPublished != nil {
		existing.IsPublished = *req.IsPublished
	}
	existing.ScheduledPublishDate = req.ScheduledPublishDate
	if err := validateContentVariant(existing); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing, req.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "notice was modified by someone else, reload and retry")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notice")
	}
	s.notifyChange(events.EventNoticeUpdated, existing.ID)
	return existing, nil
}

// SetArchived toggles the archive flag. All other fields are untouched, so
// restoring a notice returns it to the active list exactly as it was.
func (s *NoticeService) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repo.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive notice")
	}
	s.notifyChange(events.EventNoticeArchived, id)
	return nil
}

// Delete removes a notice permanently. There is no soft delete or undo.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	s.notifyChange(events.EventNoticeDeleted, id)
	return nil
}

// Stats returns the dashboard counters.
func (s *NoticeService) Stats(ctx context.Context) (*models.NoticeStats, error) {
	stats, err := s.repo.Stats(ctx, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute notice stats")
	}
	return stats, nil
}

// CacheHitter is implemented by the metrics service to count feed cache
// lookups; wired optionally to keep the service testable without metrics.
type CacheHitter interface {
	FeedCacheHit()
	FeedCacheMiss()
}

// PublicFeed serves the read-only feed. The visible set is cached whole;
// category and search filters are applied over the fetched set, and the
// urgent band is computed from the unfiltered set.
func (s *NoticeService) PublicFeed(ctx context.Context, category, search string, metrics CacheHitter) (*FeedResponse, error) {
	notices, err := s.loadPublicSet(ctx, metrics)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feed")
	}

	urgent := make([]models.Notice, 0)
	for _, notice := range notices {
		if notice.Priority == models.PriorityUrgent {
			urgent = append(urgent, notice)
		}
	}

	filtered := notices
	if category != "" || search != "" {
		filtered = make([]models.Notice, 0, len(notices))
		for _, notice := range notices {
			if category != "" && string(notice.Category) != category {
				continue
			}
			if !notice.MatchesSearch(search) {
				continue
			}
			filtered = append(filtered, notice)
		}
	}

	return &FeedResponse{Notices: filtered, Urgent: urgent}, nil
}

func (s *NoticeService) loadPublicSet(ctx context.Context, metrics CacheHitter) ([]models.Notice, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, feedCacheKey)
		if err == nil {
			var notices []models.Notice
			if jsonErr := json.Unmarshal([]byte(cached), &notices); jsonErr == nil {
				if metrics != nil {
					metrics.FeedCacheHit()
				}
				return notices, nil
			}
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("feed cache read failed", zap.Error(err))
		}
	}
	if metrics != nil {
		metrics.FeedCacheMiss()
	}

	notices, err := s.repo.List(ctx, models.NoticeFilter{PublicOnly: true})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(notices); err == nil {
			if err := s.cache.Set(ctx, feedCacheKey, string(encoded), s.feedTTL); err != nil {
				s.logger.Warn("feed cache write failed", zap.Error(err))
			}
		}
	}
	return notices, nil
}

// notifyChange invalidates the feed cache and broadcasts the change so feed
// subscribers refetch. Cache failures are logged, never surfaced: the read
// path falls back to the store once the TTL lapses.
func (s *NoticeService) notifyChange(eventType, noticeID string) {
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Delete(ctx, feedCacheKey); err != nil {
			s.logger.Warn("feed cache invalidation failed", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(events.NewEvent(eventType, map[string]string{"id": noticeID}))
	}
}

// validateContentVariant enforces the content-type invariants at the storage
// boundary: link_url only for link notices, attachments only for
// attachment-bearing types.
func validateContentVariant(notice *models.Notice) error {
	hasLink := notice.LinkURL != nil && *notice.LinkURL != ""
	if hasLink && notice.ContentType != models.ContentTypeLink {
		return appErrors.Clone(appErrors.ErrValidation, "link_url is only allowed for link notices")
	}
	if notice.ContentType == models.ContentTypeLink && !hasLink {
		return appErrors.Clone(appErrors.ErrValidation, "link notices require link_url")
	}
	if len(notice.AttachmentURLs) > 0 && !notice.ContentType.HasAttachments() {
		return appErrors.Clone(appErrors.ErrValidation, "attachments are only allowed for pdf, image or video notices")
	}
	return nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
