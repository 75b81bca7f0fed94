package services

import (
	"context"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const (
	MaxUploadSize = 5 << 20
	UploadsPrefix = "/uploads/"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// OpenBucket opens a directory-backed bucket, or an in-memory one when dir is empty.
func OpenBucket(dir string) (*blob.Bucket, error) {
	if dir == "" {
		return memblob.OpenBucket(nil), nil
	}
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open upload bucket: %w", err)
	}
	return bucket, nil
}

type UploadService struct {
	bucket *blob.Bucket
	logger zerolog.Logger
	now    func() time.Time
}

func NewUploadService(bucket *blob.Bucket, logger zerolog.Logger) *UploadService {
	return &UploadService{
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

// ResolveContentType prefers the declared part type and falls back to the
// filename extension when the client sent a generic one.
func ResolveContentType(filename, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); byExt != "" {
		return byExt
	}
	return declared
}

func (s *UploadService) Save(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) > MaxUploadSize {
		return "", ErrUploadTooLarge
	}
	contentType = ResolveContentType(filename, contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrInvalidUpload
	}

	name := unsafeKeyChars.ReplaceAllString(path.Base(strings.ReplaceAll(filename, "\\", "/")), "-")
	key := fmt.Sprintf("%d-%s", s.now().UnixMilli(), name)

	err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error storing upload")
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	s.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("Image uploaded")
	return UploadsPrefix + key, nil
}

func (s *UploadService) Open(ctx context.Context, key string) ([]byte, string, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, "", ErrUploadNotFound
		}
		return nil, "", fmt.Errorf("failed to stat upload: %w", err)
	}

	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	return data, attrs.ContentType, nil
}
