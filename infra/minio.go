package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-photobooth/config"
)

// ErrObjectExists is returned when a write would overwrite an existing
// object. Keys are derived to be unique, so hitting this means the
// uniqueness contract was violated upstream.
var ErrObjectExists = errors.New("object already exists")

type MinioClient struct {
	Client        *minio.Client
	Bucket        string
	PublicBaseURL string
	CacheMaxAge   int
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Client:        minioClient,
		Bucket:        cfg.Storage.Bucket,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		CacheMaxAge:   cfg.Storage.CacheMaxAge,
	}

	if err := client.EnsureBucket(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to prepare photo bucket: %v", err))
	}

	return client
}

// EnsureBucket creates the photo bucket if it doesn't exist and makes it
// publicly readable so stored URLs resolve without presigning.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	policyJSON := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, m.Bucket)

	if err := m.Client.SetBucketPolicy(ctx, m.Bucket, policyJSON); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// PutObject writes the binary under key and returns its public URL.
// Overwrite is refused: an existing object under the same key fails the
// write with ErrObjectExists instead of silently replacing it.
func (m *MinioClient) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}

	exists, err := m.ObjectExists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to check object existence: %w", err)
	}
	if exists {
		return "", fmt.Errorf("refusing to overwrite object %q: %w", key, ErrObjectExists)
	}

	_, err = m.Client.PutObject(ctx, m.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: fmt.Sprintf("max-age=%d", m.CacheMaxAge),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %q: %w", key, err)
	}

	return m.PublicURL(key), nil
}

// RemoveObject deletes the binary under key. Removing a nonexistent key is
// not an error on S3-compatible stores.
func (m *MinioClient) RemoveObject(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	if err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", key, err)
	}

	return nil
}

// ObjectExists reports whether an object is stored under key.
func (m *MinioClient) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ObjectInfo is the subset of object metadata the reconciler needs.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ListObjects returns every object currently in the photo bucket.
func (m *MinioClient) ListObjects(ctx context.Context) ([]ObjectInfo, error) {
	objectsCh := m.Client.ListObjects(ctx, m.Bucket, minio.ListObjectsOptions{
		Recursive: true,
	})

	var objects []ObjectInfo
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}

// PublicURL derives the publicly resolvable address for a key. Pure
// function of the key and store configuration, no network round trip.
func (m *MinioClient) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.PublicBaseURL, m.Bucket, url.PathEscape(key))
}
