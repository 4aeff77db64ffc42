package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/config"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/storage"
)

// UploadFile describes one incoming attachment stream.
type UploadFile struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// AttachmentService validates and stores notice attachments, returning the
// public URLs persisted on the notice.
type AttachmentService struct {
	store  *storage.LocalStorage
	cfg    config.StorageConfig
	logger *zap.Logger
}

// NewAttachmentService constructs an AttachmentService instance.
func NewAttachmentService(store *storage.LocalStorage, cfg config.StorageConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{store: store, cfg: cfg, logger: logger}
}

// Upload stores the given files sequentially under the owner's directory.
// The first failure aborts the batch; files already written in the batch are
// left in place since the caller never received their URLs.
func (s *AttachmentService) Upload(ctx context.Context, ownerID string, files []UploadFile) ([]string, error) {
	if ownerID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "you must be signed in to upload attachments")
	}
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files supplied")
	}

	urls := make([]string, 0, len(files))
	batch := time.Now().UnixNano()
	for i, file := range files {
		select {
		case <-ctx.Done():
			return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "upload cancelled")
		default:
		}

		if err := s.validate(file); err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		relPath := fmt.Sprintf("%s/%d_%d%s", ownerID, batch, i, ext)
		if _, err := s.store.SaveStream(relPath, io.LimitReader(file.Content, s.cfg.MaxFileSizeBytes)); err != nil {
			s.logger.Error("attachment write failed",
				zap.String("owner_id", ownerID),
				zap.String("filename", file.Filename),
				zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
		}
		urls = append(urls, s.cfg.PublicBaseURL+"/uploads/"+relPath)
	}

	s.logger.Info("attachments stored", zap.String("owner_id", ownerID), zap.Int("count", len(urls)))
	return urls, nil
}

func (s *AttachmentService) validate(file UploadFile) error {
	if file.Filename == "" {
		return appErrors.Clone(appErrors.ErrValidation, "attachment filename is required")
	}
	if s.cfg.MaxFileSizeBytes > 0 && file.Size > s.cfg.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("attachment %s exceeds the %d byte limit", file.Filename, s.cfg.MaxFileSizeBytes))
	}
	if len(s.cfg.AllowedMIMEs) == 0 {
		return nil
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, file.ContentType) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation,
		fmt.Sprintf("attachment type %s is not allowed", file.ContentType))
}
