package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-photobooth/entity"
	"github.com/tnqbao/gau-photobooth/infra"
	"github.com/tnqbao/gau-photobooth/utils"
	"gorm.io/gorm"
)

const (
	objectWriteAttempts = 3
	objectWriteBackoff  = 200 * time.Millisecond

	FeedCacheKey = "photos:feed"
	feedCacheTTL = 5 * time.Minute
)

type UploadInput struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
	Caption     string
}

type UploadResult struct {
	Photo    *entity.Photo
	Filename string
	MIME     string
	Size     int64
	Caption  string
}

// Upload runs the intake pipeline: derive a unique key, write the binary,
// derive the public URL, insert the metadata row. The binary write always
// happens before the insert; if the insert fails the orphaned object is
// left in place for the reconciler rather than rolled back synchronously.
func (s *PhotoService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Reader == nil || in.Size == 0 {
		return nil, newError(KindMissingPayload, `Missing image file (field name: "image")`, nil)
	}
	if s.maxUploadSize > 0 && in.Size > s.maxUploadSize {
		return nil, newError(KindPayloadTooLarge, "Image exceeds maximum upload size", nil)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := io.ReadAll(io.LimitReader(in.Reader, in.Size))
	if err != nil {
		return nil, newError(KindObjectWriteFailed, "Failed to read image payload", err)
	}

	key := utils.NewObjectKey(time.Now(), in.Filename)
	imageURL, err := s.putObjectWithRetry(ctx, key, data, contentType)
	if err != nil {
		return nil, newError(KindObjectWriteFailed, "Failed to store image", err)
	}

	photo := &entity.Photo{
		ImageName: key,
		ImageURL:  imageURL,
		Caption:   strings.TrimSpace(in.Caption),
		CreatedAt: time.Now(),
	}
	if err := s.photos.Create(photo); err != nil {
		// The binary is already durable; reported as a failed upload because
		// the photo is not visible or deletable through the normal interface.
		// The orphaned object is left for out-of-band reconciliation.
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Metadata insert failed, object %q left orphaned", key)
		return nil, newError(KindMetadataInsertFailed, "Failed to save photo metadata", err)
	}

	s.invalidateFeed(ctx)

	return &UploadResult{
		Photo:    photo,
		Filename: in.Filename,
		MIME:     contentType,
		Size:     int64(len(data)),
		Caption:  photo.Caption,
	}, nil
}

// putObjectWithRetry writes the binary with bounded retry and backoff. The
// metadata insert is never retried this way; an ambiguous insert failure
// could double-insert, while re-putting the same key is safe because the
// store refuses overwrites.
func (s *PhotoService) putObjectWithRetry(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= objectWriteAttempts; attempt++ {
		url, err := s.storage.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
		if err == nil {
			return url, nil
		}
		lastErr = err
		if errors.Is(err, infra.ErrObjectExists) {
			// Key collision is a contract violation, not a transient fault.
			return "", err
		}
		s.logger.WarningWithContextf(ctx, "[Photo] Object write attempt %d/%d for %q failed: %v", attempt, objectWriteAttempts, key, err)
		if attempt < objectWriteAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * objectWriteBackoff):
			}
		}
	}
	return "", lastErr
}

// List returns every photo, newest first. Never returns nil on success so
// an empty feed serializes as [] rather than null.
func (s *PhotoService) List(ctx context.Context) ([]entity.Photo, error) {
	if s.cache != nil {
		var cached []entity.Photo
		err := s.cache.Get(ctx, FeedCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, infra.ErrCacheMiss) {
			s.logger.WarningWithContextf(ctx, "[Photo] Feed cache read failed: %v", err)
		}
	}

	photos, err := s.photos.List()
	if err != nil {
		return nil, newError(KindFetchFailed, "Failed to fetch images", err)
	}
	if photos == nil {
		photos = []entity.Photo{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, FeedCacheKey, photos, feedCacheTTL); err != nil {
			s.logger.WarningWithContextf(ctx, "[Photo] Feed cache write failed: %v", err)
		}
	}

	return photos, nil
}

// Delete removes the metadata row and then the binary. The metadata delete
// is authoritative: once the row is gone the delete has succeeded from the
// user's point of view, and a failed object delete is handed to the cleanup
// queue instead of resurrecting the row.
func (s *PhotoService) Delete(ctx context.Context, id uuid.UUID, imageName string) error {
	if err := s.photos.DeleteByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "Photo not found", err)
		}
		return newError(KindMetadataDeleteFailed, "Failed to delete photo metadata", err)
	}

	s.invalidateFeed(ctx)

	if imageName == "" {
		return nil
	}

	if err := s.storage.RemoveObject(ctx, imageName); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Object delete for %q failed, enqueueing cleanup", imageName)
		if s.cleanup != nil {
			if pubErr := s.cleanup.PublishObjectCleanup(ctx, imageName, "delete_failed"); pubErr != nil {
				s.logger.ErrorWithContextf(ctx, pubErr, "[Photo] Failed to enqueue cleanup for %q", imageName)
			}
		}
	}

	return nil
}

func (s *PhotoService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, FeedCacheKey); err != nil {
		s.logger.WarningWithContextf(ctx, "[Photo] Feed cache invalidation failed: %v", err)
	}
}
