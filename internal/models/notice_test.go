package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortForFeedUrgentFirstThenNewest(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	notices := []Notice{
		{Title: "general", Priority: PriorityGeneral, CreatedAt: base.Add(3 * time.Hour)},
		{Title: "urgent-old", Priority: PriorityUrgent, CreatedAt: base},
		{Title: "important", Priority: PriorityImportant, CreatedAt: base.Add(2 * time.Hour)},
		{Title: "urgent-new", Priority: PriorityUrgent, CreatedAt: base.Add(time.Hour)},
	}

	SortForFeed(notices)

	titles := make([]string, len(notices))
	for i, n := range notices {
		titles[i] = n.Title
	}
	assert.Equal(t, []string{"urgent-new", "urgent-old", "important", "general"}, titles)
}

func TestIsExpiredBoundaryIsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	notice := Notice{ExpiresAt: now}

	assert.False(t, notice.IsExpired(now))
	assert.True(t, notice.IsExpired(now.Add(time.Nanosecond)))
	assert.False(t, notice.IsExpired(now.Add(-time.Second)))
}

func TestDefaultExpiryIsThirtyDays(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, created.AddDate(0, 0, 30), DefaultExpiry(created))
}

func TestVisibleToPublic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name    string
		notice  Notice
		visible bool
	}{
		{"published", Notice{IsPublished: true}, true},
		{"draft", Notice{IsPublished: false}, false},
		{"archived", Notice{IsPublished: true, IsArchived: true}, false},
		{"scheduled future", Notice{IsPublished: true, ScheduledPublishDate: &future}, false},
		{"scheduled past", Notice{IsPublished: true, ScheduledPublishDate: &past}, true},
		{"scheduled now", Notice{IsPublished: true, ScheduledPublishDate: &now}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, tc.notice.VisibleToPublic(now))
		})
	}
}

func TestStatusBadgePrecedence(t *testing.T) {
	assert.Equal(t, "archived", (&Notice{IsArchived: true, IsPublished: false, Priority: PriorityUrgent}).StatusBadge())
	assert.Equal(t, "draft", (&Notice{IsPublished: false, Priority: PriorityUrgent}).StatusBadge())
	assert.Equal(t, "urgent", (&Notice{IsPublished: true, Priority: PriorityUrgent}).StatusBadge())
	assert.Equal(t, "important", (&Notice{IsPublished: true, Priority: PriorityImportant}).StatusBadge())
	assert.Equal(t, "published", (&Notice{IsPublished: true, Priority: PriorityGeneral}).StatusBadge())
}

func TestMatchesSearchCaseInsensitive(t *testing.T) {
	exam := Notice{Title: "Midterm Exam Schedule", Content: "Hall allocation attached"}
	library := Notice{Title: "Library Hours", Content: "Open till midnight"}

	assert.True(t, exam.MatchesSearch("exam"))
	assert.True(t, exam.MatchesSearch("EXAM"))
	assert.True(t, exam.MatchesSearch("hall"))
	assert.False(t, library.MatchesSearch("exam"))
	assert.True(t, library.MatchesSearch(""))
}

func TestEnumValidators(t *testing.T) {
	assert.True(t, ValidCategory("exams"))
	assert.False(t, ValidCategory("gossip"))
	assert.True(t, ValidPriority("urgent"))
	assert.False(t, ValidPriority("critical"))
	assert.True(t, ValidContentType("video"))
	assert.False(t, ValidContentType("audio"))
	assert.True(t, ValidAccountStatus("approved"))
	assert.False(t, ValidAccountStatus("banned"))
	assert.True(t, ValidRole("placement_cell"))
	assert.False(t, ValidRole("student"))
}

func TestHasAttachments(t *testing.T) {
	assert.True(t, ContentTypePDF.HasAttachments())
	assert.True(t, ContentTypeImage.HasAttachments())
	assert.True(t, ContentTypeVideo.HasAttachments())
	assert.False(t, ContentTypeText.HasAttachments())
	assert.False(t, ContentTypeLink.HasAttachments())
}

func TestPriorityRankUnknownSortsLast(t *testing.T) {
	assert.Equal(t, 0, PriorityUrgent.Rank())
	assert.Equal(t, 1, PriorityImportant.Rank())
	assert.Equal(t, 2, PriorityGeneral.Rank())
	assert.Greater(t, NoticePriority("mystery").Rank(), PriorityGeneral.Rank())
}
