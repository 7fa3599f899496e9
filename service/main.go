package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-photobooth/entity"
	"github.com/tnqbao/gau-photobooth/infra"
)

// ObjectStorage is the Object Store collaborator. Satisfied by
// *infra.MinioClient.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	RemoveObject(ctx context.Context, key string) error
}

// PhotoRepository is the Metadata Store collaborator. Satisfied by
// *repository.PhotoRepository.
type PhotoRepository interface {
	Create(photo *entity.Photo) error
	List() ([]entity.Photo, error)
	DeleteByID(id uuid.UUID) error
	ExistsByImageName(imageName string) (bool, error)
}

// CleanupPublisher enqueues deferred object deletes. Satisfied by
// *produce.CleanupService.
type CleanupPublisher interface {
	PublishObjectCleanup(ctx context.Context, imageName string, reason string) error
}

// FeedCache caches the serialized feed. Satisfied by *infra.RedisClient.
type FeedCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// PhotoService is the intake/feed/removal pipeline over the two backing
// stores. It is stateless between calls; consistency comes from write
// ordering, not locking.
type PhotoService struct {
	storage       ObjectStorage
	photos        PhotoRepository
	cleanup       CleanupPublisher
	cache         FeedCache
	logger        *infra.LoggerClient
	maxUploadSize int64
}

func NewPhotoService(storage ObjectStorage, photos PhotoRepository, cleanup CleanupPublisher, cache FeedCache, logger *infra.LoggerClient, maxUploadSize int64) *PhotoService {
	return &PhotoService{
		storage:       storage,
		photos:        photos,
		cleanup:       cleanup,
		cache:         cache,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}
