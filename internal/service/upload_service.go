package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"marketplace/internal/apperror"
	"marketplace/internal/ids"
	"marketplace/internal/media/sniffer"
	"marketplace/internal/models"
)

// ObjectStore is the blob storage the upload service writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ImageUpload is an image file received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type UploadService struct {
	store    ObjectStore
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewUploadService(store ObjectStore, maxBytes int64, log zerolog.Logger) *UploadService {
	return &UploadService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log,
	}
}

// Upload validates the image and stores it under folder. Rejected input
// yields a validation error; storage failures an external service error.
func (s *UploadService) Upload(ctx context.Context, folder string, upload ImageUpload) (models.ImageRef, error) {
	if upload.Body == nil {
		return models.ImageRef{}, apperror.NewValidation("Image file is required")
	}

	expected, err := sniffer.CheckExtension(upload.Filename)
	if err != nil {
		return models.ImageRef{}, apperror.NewValidation("File not supported")
	}

	reader := upload.Body
	if s.maxBytes > 0 {
		reader = io.LimitReader(reader, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return models.ImageRef{}, apperror.NewValidation("Image file is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return models.ImageRef{}, apperror.NewValidation("Image file is too large")
	}

	result, err := sniffer.DetectHead(data)
	if err != nil || result.Type != expected {
		return models.ImageRef{}, apperror.NewValidation("File not supported")
	}

	if upload.ContentType != "" && upload.ContentType != "application/octet-stream" && upload.ContentType != result.MIME {
		return models.ImageRef{}, apperror.NewValidation(
			fmt.Sprintf("Content type mismatch: declared %s, actual %s", upload.ContentType, result.MIME))
	}

	key := s.buildObjectKey(folder, result.Extension())
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), result.MIME); err != nil {
		return models.ImageRef{}, apperror.NewExternalService("Image upload failed", err)
	}

	s.log.Debug().Str("object_key", key).Int("size", len(data)).Msg("image stored")

	return models.ImageRef{
		ExternalID: key,
		URL:        s.store.PublicURL(key),
	}, nil
}

func (s *UploadService) Remove(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}
	if err := s.store.Remove(ctx, externalID); err != nil {
		return apperror.NewExternalService("Image delete failed", err)
	}
	return nil
}

func (s *UploadService) buildObjectKey(folder string, ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(folder, datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))
}
