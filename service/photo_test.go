package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-photobooth/entity"
	"github.com/tnqbao/gau-photobooth/infra"
	"github.com/tnqbao/gau-photobooth/service"
	"gorm.io/gorm"
)

type fakeStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failPuts   int
	failRemove bool
	putCalls   int
	removed    []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.failPuts > 0 {
		f.failPuts--
		return "", errors.New("storage unavailable")
	}
	if _, ok := f.objects[key]; ok {
		return "", infra.ErrObjectExists
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "https://cdn.test/photos/" + key, nil
}

func (f *fakeStorage) RemoveObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemove {
		return errors.New("storage unavailable")
	}
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

type fakeRepo struct {
	mu         sync.Mutex
	photos     []entity.Photo
	failCreate bool
	failList   bool
}

func (f *fakeRepo) Create(photo *entity.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("connection refused")
	}
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	f.photos = append(f.photos, *photo)
	return nil
}

func (f *fakeRepo) List() ([]entity.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errors.New("connection refused")
	}
	out := make([]entity.Photo, len(f.photos))
	copy(out, f.photos)
	return out, nil
}

func (f *fakeRepo) DeleteByID(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.photos {
		if p.ID == id {
			f.photos = append(f.photos[:i], f.photos[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) ExistsByImageName(imageName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.photos {
		if p.ImageName == imageName {
			return true, nil
		}
	}
	return false, nil
}

type fakeCleanup struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeCleanup) PublishObjectCleanup(ctx context.Context, imageName string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, imageName)
	return nil
}

func testLogger() *infra.LoggerClient {
	return &infra.LoggerClient{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func newTestService(storage *fakeStorage, repo *fakeRepo, cleanup *fakeCleanup) *service.PhotoService {
	return service.NewPhotoService(storage, repo, cleanup, nil, testLogger(), 10<<20)
}

func uploadInput(data, filename, caption string) service.UploadInput {
	return service.UploadInput{
		Reader:      strings.NewReader(data),
		Size:        int64(len(data)),
		Filename:    filename,
		ContentType: "image/jpeg",
		Caption:     caption,
	}
}

func TestUpload_Success_TrimsCaption(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	result, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo_1.jpg", " Sunset! "))
	require.NoError(t, err)
	require.Equal(t, "Sunset!", result.Caption)
	require.Equal(t, "photo_1.jpg", result.Filename)
	require.Equal(t, "image/jpeg", result.MIME)
	require.Equal(t, int64(len("jpegbytes")), result.Size)
	require.NotEmpty(t, result.Photo.ImageName)
	require.Equal(t, "https://cdn.test/photos/"+result.Photo.ImageName, result.Photo.ImageURL)

	photos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, photos, 1)
	require.Equal(t, "Sunset!", photos[0].Caption)
}

func TestUpload_MissingPayload(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	_, err := svc.Upload(context.Background(), service.UploadInput{})
	require.Error(t, err)

	se, ok := service.AsError(err)
	require.True(t, ok)
	require.Equal(t, service.KindMissingPayload, se.Kind)
	require.True(t, se.ClientFault())

	// No side effects on either store.
	require.Empty(t, storage.objects)
	require.Empty(t, repo.photos)
}

func TestUpload_PayloadTooLarge(t *testing.T) {
	svc := service.NewPhotoService(newFakeStorage(), &fakeRepo{}, &fakeCleanup{}, nil, testLogger(), 4)

	_, err := svc.Upload(context.Background(), uploadInput("12345", "big.jpg", ""))
	se, ok := service.AsError(err)
	require.True(t, ok)
	require.Equal(t, service.KindPayloadTooLarge, se.Kind)
}

func TestUpload_ObjectWriteFailure_NoMetadataCreated(t *testing.T) {
	storage := newFakeStorage()
	storage.failPuts = 10 // fails every attempt
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	_, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", "hi"))
	require.Error(t, err)

	se, ok := service.AsError(err)
	require.True(t, ok)
	require.Equal(t, service.KindObjectWriteFailed, se.Kind)
	require.False(t, se.ClientFault())

	// The ordering invariant: no metadata row without a durable object.
	require.Empty(t, repo.photos)
}

func TestUpload_ObjectWriteRetriesTransientFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.failPuts = 2
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	_, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", ""))
	require.NoError(t, err)
	require.Equal(t, 3, storage.putCalls)
	require.Len(t, repo.photos, 1)
}

func TestUpload_MetadataInsertFailure_LeavesOrphan(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{failCreate: true}
	svc := newTestService(storage, repo, &fakeCleanup{})

	_, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", ""))
	require.Error(t, err)

	se, ok := service.AsError(err)
	require.True(t, ok)
	require.Equal(t, service.KindMetadataInsertFailed, se.Kind)

	// The binary stays in the object store for the reconciler; the intake
	// path does not roll it back.
	require.Len(t, storage.objects, 1)
	require.Empty(t, storage.removed)
	require.Empty(t, repo.photos)
}

func TestUpload_ConcurrentKeysAreUnique(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", ""))
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, storage.objects, n)

	keys := make(map[string]bool)
	for _, p := range repo.photos {
		keys[p.ImageName] = true
	}
	require.Len(t, keys, n)
}

func TestList_Idempotent(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	for i := 0; i < 3; i++ {
		_, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", ""))
		require.NoError(t, err)
	}

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, first, second)
}

func TestList_EmptyFeedIsNotNil(t *testing.T) {
	svc := newTestService(newFakeStorage(), &fakeRepo{}, &fakeCleanup{})

	photos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, photos)
	require.Empty(t, photos)
}

func TestList_FetchFailure(t *testing.T) {
	svc := newTestService(newFakeStorage(), &fakeRepo{failList: true}, &fakeCleanup{})

	_, err := svc.List(context.Background())
	se, ok := service.AsError(err)
	require.True(t, ok)
	require.Equal(t, service.KindFetchFailed, se.Kind)
}

func TestDelete_RemovesBothStores(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	result, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", ""))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), result.Photo.ID, result.Photo.ImageName)
	require.NoError(t, err)

	photos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, photos)
	require.Empty(t, storage.objects)
}

func TestDelete_UnknownID(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := newTestService(storage, repo, &fakeCleanup{})

	err := svc.Delete(context.Background(), uuid.New(), "nonexistent.jpg")
	require.Error(t, err)

	se, ok := service.AsError(err)
	require.True(t, ok)
	require.Equal(t, service.KindNotFound, se.Kind)
	require.True(t, se.ClientFault())
}

func TestDelete_ObjectDeleteFailure_StillSucceeds(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	cleanup := &fakeCleanup{}
	svc := newTestService(storage, repo, cleanup)

	result, err := svc.Upload(context.Background(), uploadInput("jpegbytes", "photo.jpg", ""))
	require.NoError(t, err)

	storage.failRemove = true
	err = svc.Delete(context.Background(), result.Photo.ID, result.Photo.ImageName)
	require.NoError(t, err)

	// The metadata deletion is authoritative: the feed no longer lists the
	// photo even though the binary is still there.
	photos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, photos)
	require.Len(t, storage.objects, 1)

	// The stranded binary was handed to the cleanup queue.
	require.Equal(t, []string{result.Photo.ImageName}, cleanup.published)
}
