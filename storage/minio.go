package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/crownmania/crownmania/assets"
	"github.com/crownmania/crownmania/config"
)

// MinioStore is the S3-compatible object store behind the asset resolver.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// NewMinioStore connects to the configured endpoint and creates the bucket when missing.
func NewMinioStore(ctx context.Context, cfg config.AppConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.StorageBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.StorageBucket, minio.MakeBucketOptions{Region: cfg.StorageRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	expiry := time.Duration(cfg.StorageURLExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = 2 * time.Hour
	}
	return &MinioStore{client: client, bucket: cfg.StorageBucket, urlExpiry: expiry}, nil
}

// Bucket returns the bucket name.
func (m *MinioStore) Bucket() string { return m.bucket }

// CheckConnection verifies the bucket is reachable.
func (m *MinioStore) CheckConnection(ctx context.Context) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("storage not initialized")
	}
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}

// DownloadURL checks the object exists and returns a presigned GET URL for it.
func (m *MinioStore) DownloadURL(ctx context.Context, objectName string) (string, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return "", assets.ErrNotFound
		}
		return "", err
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, m.urlExpiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Upload stores body under objectName. Existing objects are overwritten.
func (m *MinioStore) Upload(ctx context.Context, objectName string, body io.Reader, size int64, contentType string) error {
	if size <= 0 {
		size = -1
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// List returns the objects directly under folder.
func (m *MinioStore) List(ctx context.Context, folder string) ([]assets.ObjectRef, error) {
	prefix := strings.Trim(folder, "/")
	if prefix != "" {
		prefix += "/"
	}
	var refs []assets.ObjectRef
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// common prefixes (sub folders) end with a slash
		if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		refs = append(refs, assets.ObjectRef{Name: path.Base(obj.Key), Path: obj.Key})
	}
	return refs, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject", "NotFound":
		return true
	}
	return resp.StatusCode == 404 && resp.Code != "NoSuchBucket"
}
