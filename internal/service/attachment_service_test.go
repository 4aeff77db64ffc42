package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/config"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/storage"
)

func newAttachmentService(t *testing.T) (*AttachmentService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	cfg := config.StorageConfig{
		BaseDir:          dir,
		PublicBaseURL:    "http://localhost:8080",
		MaxFileSizeBytes: 1024,
		AllowedMIMEs:     []string{"application/pdf", "image/png"},
	}
	return NewAttachmentService(store, cfg, nil), dir
}

func TestAttachmentServiceUploadStoresFiles(t *testing.T) {
	svc, dir := newAttachmentService(t)

	urls, err := svc.Upload(context.Background(), "u1", []UploadFile{
		{Filename: "timetable.pdf", Size: 10, ContentType: "application/pdf", Content: strings.NewReader("0123456789")},
		{Filename: "map.PNG", Size: 4, ContentType: "image/png", Content: strings.NewReader("abcd")},
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)

	assert.True(t, strings.HasPrefix(urls[0], "http://localhost:8080/uploads/u1/"))
	assert.True(t, strings.HasSuffix(urls[0], ".pdf"))
	assert.True(t, strings.HasSuffix(urls[1], ".png"))

	entries, err := os.ReadDir(filepath.Join(dir, "u1"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAttachmentServiceUploadRejectsDisallowedType(t *testing.T) {
	svc, _ := newAttachmentService(t)

	_, err := svc.Upload(context.Background(), "u1", []UploadFile{
		{Filename: "virus.exe", Size: 4, ContentType: "application/octet-stream", Content: strings.NewReader("abcd")},
	})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttachmentServiceUploadRejectsOversizeFile(t *testing.T) {
	svc, _ := newAttachmentService(t)

	_, err := svc.Upload(context.Background(), "u1", []UploadFile{
		{Filename: "big.pdf", Size: 4096, ContentType: "application/pdf", Content: strings.NewReader("x")},
	})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttachmentServiceUploadFirstErrorAborts(t *testing.T) {
	svc, dir := newAttachmentService(t)

	_, err := svc.Upload(context.Background(), "u1", []UploadFile{
		{Filename: "bad.exe", Size: 4, ContentType: "application/octet-stream", Content: strings.NewReader("abcd")},
		{Filename: "good.pdf", Size: 4, ContentType: "application/pdf", Content: strings.NewReader("abcd")},
	})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "u1"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAttachmentServiceUploadRequiresOwnerAndFiles(t *testing.T) {
	svc, _ := newAttachmentService(t)

	_, err := svc.Upload(context.Background(), "", []UploadFile{{Filename: "a.pdf"}})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Upload(context.Background(), "u1", nil)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
