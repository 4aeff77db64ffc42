package models

import (
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

// NoticeCategory classifies a notice for feed filtering.
type NoticeCategory string

const (
	CategoryAcademic   NoticeCategory = "academic"
	CategoryExams      NoticeCategory = "exams"
	CategoryPlacements NoticeCategory = "placements"
	CategoryCultural   NoticeCategory = "cultural"
	CategorySports     NoticeCategory = "sports"
	CategoryCirculars  NoticeCategory = "circulars"
)

// NoticePriority governs feed ordering and the urgent presentation band.
type NoticePriority string

const (
	PriorityUrgent    NoticePriority = "urgent"
	PriorityImportant NoticePriority = "important"
	PriorityGeneral   NoticePriority = "general"
)

// NoticeContentType selects which optional fields are meaningful.
type NoticeContentType string

const (
	ContentTypeText  NoticeContentType = "text"
	ContentTypePDF   NoticeContentType = "pdf"
	ContentTypeImage NoticeContentType = "image"
	ContentTypeLink  NoticeContentType = "link"
	ContentTypeVideo NoticeContentType = "video"
)

// NoticeLifetime is the default window between creation and expiry.
const NoticeLifetime = 30 * 24 * time.Hour

// DefaultAudience is stored when no explicit audience tags were supplied.
const DefaultAudience = "whole_campus"

// Notice represents a persisted noticeboard entry.
type Notice struct {
	ID                   string            `db:"id" json:"id"`
	Title                string            `db:"title" json:"title"`
	Content              string            `db:"content" json:"content"`
	Category             NoticeCategory    `db:"category" json:"category"`
	Priority             NoticePriority    `db:"priority" json:"priority"`
	ContentType          NoticeContentType `db:"content_type" json:"content_type"`
	AttachmentURLs       pq.StringArray    `db:"attachment_urls" json:"attachment_urls,omitempty"`
	LinkURL              *string           `db:"link_url" json:"link_url,omitempty"`
	Department           *string           `db:"department" json:"department,omitempty"`
	Year                 *string           `db:"year" json:"year,omitempty"`
	TargetAudience       pq.StringArray    `db:"target_audience" json:"target_audience"`
	IsPublished          bool              `db:"is_published" json:"is_published"`
	ScheduledPublishDate *time.Time        `db:"scheduled_publish_date" json:"scheduled_publish_date,omitempty"`
	IsArchived           bool              `db:"is_archived" json:"is_archived"`
	Version              int               `db:"version" json:"version"`
	CreatedBy            string            `db:"created_by" json:"created_by"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	ExpiresAt            time.Time         `db:"expires_at" json:"expires_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

// NoticeFilter narrows listing queries.
type NoticeFilter struct {
	Archived   *bool
	Category   NoticeCategory
	PublicOnly bool
}

// NoticeStats summarises the dashboard counters.
type NoticeStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Drafts   int `json:"drafts"`
	Archived int `json:"archived"`
	Urgent   int `json:"urgent"`
}

var priorityRank = map[NoticePriority]int{
	PriorityUrgent:    0,
	PriorityImportant: 1,
	PriorityGeneral:   2,
}

// Rank returns the feed sort rank for a priority; unknown values sort last.
func (p NoticePriority) Rank() int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return len(priorityRank)
}

// DefaultExpiry computes the expiry applied when none is supplied at creation.
func DefaultExpiry(createdAt time.Time) time.Time {
	return createdAt.Add(NoticeLifetime)
}

// IsExpired reports whether the notice has passed its expiry. The comparison
// is strict: a notice whose expiry equals now is still active.
func (n *Notice) IsExpired(now time.Time) bool {
	return now.After(n.ExpiresAt)
}

// VisibleToPublic reports whether the public feed may show the notice.
// Publication and archive flags are independent and both checked; a scheduled
// publish date in the future keeps the notice hidden.
func (n *Notice) VisibleToPublic(now time.Time) bool {
	if !n.IsPublished || n.IsArchived {
		return false
	}
	if n.ScheduledPublishDate != nil && n.ScheduledPublishDate.After(now) {
		return false
	}
	return true
}

// StatusBadge derives the presentation label shown alongside a notice.
func (n *Notice) StatusBadge() string {
	switch {
	case n.IsArchived:
		return "archived"
	case !n.IsPublished:
		return "draft"
	case n.Priority == PriorityUrgent:
		return "urgent"
	case n.Priority == PriorityImportant:
		return "important"
	default:
		return "published"
	}
}

// MatchesSearch reports whether the query is a case-insensitive substring of
// the title or content. An empty query matches everything.
func (n *Notice) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q)
}

// SortForFeed orders notices urgent-first, ties broken by newest creation.
// The sort is stable so equal entries keep their fetched order.
func SortForFeed(notices []Notice) {
	sort.SliceStable(notices, func(i, j int) bool {
		ri, rj := notices[i].Priority.Rank(), notices[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return notices[i].CreatedAt.After(notices[j].CreatedAt)
	})
}

// HasAttachments reports whether the content type renders from attachment URLs.
func (t NoticeContentType) HasAttachments() bool {
	switch t {
	case ContentTypePDF, ContentTypeImage, ContentTypeVideo:
		return true
	default:
		return false
	}
}

// ValidCategory reports whether the value is a known notice category.
func ValidCategory(v string) bool {
	switch NoticeCategory(v) {
	case CategoryAcademic, CategoryExams, CategoryPlacements, CategoryCultural, CategorySports, CategoryCirculars:
		return true
	default:
		return false
	}
}

// ValidPriority reports whether the value is a known notice priority.
func ValidPriority(v string) bool {
	_, ok := priorityRank[NoticePriority(v)]
	return ok
}

// ValidContentType reports whether the value is a known content type.
func ValidContentType(v string) bool {
	switch NoticeContentType(v) {
	case ContentTypeText, ContentTypePDF, ContentTypeImage, ContentTypeLink, ContentTypeVideo:
		return true
	default:
		return false
	}
}
