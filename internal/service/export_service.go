package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/export"
)

// ExportService renders the visible board as a printable PDF or a CSV listing
// for offline distribution.
type ExportService struct {
	repo   noticeRepository
	pdf    *export.PDFExporter
	csv    *export.CSVExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(repo noticeRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		pdf:    export.NewPDFExporter(),
		csv:    export.NewCSVExporter(),
		logger: logger,
	}
}

// BoardPDF renders the currently visible feed, urgent-first, as a printable
// document.
func (s *ExportService) BoardPDF(ctx context.Context) ([]byte, error) {
	notices, err := s.repo.List(ctx, models.NoticeFilter{PublicOnly: true})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notices for export")
	}
	if len(notices) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no notices to export")
	}

	board := export.Board{
		Title:       "Campus Noticeboard",
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]export.BoardEntry, 0, len(notices)),
	}
	for _, notice := range notices {
		board.Entries = append(board.Entries, export.BoardEntry{
			Title:    notice.Title,
			Meta:     fmt.Sprintf("%s / %s", notice.Category, notice.Priority),
			Content:  notice.Content,
			Urgent:   notice.Priority == models.PriorityUrgent,
			PostedAt: notice.CreatedAt,
		})
	}

	data, err := s.pdf.Render(board)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render board pdf")
	}
	s.logger.Info("board exported", zap.String("format", "pdf"), zap.Int("notices", len(board.Entries)))
	return data, nil
}

// NoticesCSV renders the dashboard listing, including drafts and archived
// entries, as a CSV download.
func (s *ExportService) NoticesCSV(ctx context.Context) ([]byte, error) {
	notices, err := s.repo.List(ctx, models.NoticeFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notices for export")
	}

	dataset := export.Dataset{
		Headers: []string{"id", "title", "category", "priority", "content_type", "status", "created_at", "expires_at"},
		Rows:    make([][]string, 0, len(notices)),
	}
	for i := range notices {
		notice := &notices[i]
		dataset.Rows = append(dataset.Rows, []string{
			notice.ID,
			notice.Title,
			string(notice.Category),
			string(notice.Priority),
			string(notice.ContentType),
			notice.StatusBadge(),
			notice.CreatedAt.Format(time.RFC3339),
			notice.ExpiresAt.Format(time.RFC3339),
		})
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render notices csv")
	}
	s.logger.Info("notices exported", zap.String("format", "csv"), zap.Int("notices", len(dataset.Rows)))
	return data, nil
}

// ExportFilename builds the attachment filename for a download.
func ExportFilename(prefix, ext string) string {
	stamp := time.Now().UTC().Format("20060102-150405")
	return strings.ToLower(prefix) + "-" + stamp + "." + ext
}
