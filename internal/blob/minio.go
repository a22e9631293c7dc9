package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// MinioStore stores blobs in an S3-compatible bucket. Object keys are
// generated uuids; the original filename travels as object metadata.
type MinioStore struct {
	client *minio.Client
	bucket string
}

var _ Store = (*MinioStore)(nil)

const filenameMetaKey = "Filename"

// NewMinioStore builds a MinIO-backed store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to initialize blob store", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to reach blob store", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperrors.StoreUnavailable(fmt.Sprintf("failed to create bucket %q", bucket), err)
		}
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// Put uploads the bytes under a freshly generated key.
func (s *MinioStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	key := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		UserMetadata: map[string]string{filenameMetaKey: filename},
	})
	if err != nil {
		return "", apperrors.StoreUnavailable("failed to store image", err)
	}
	return key, nil
}

// Get downloads the object stored under fileID.
func (s *MinioStore) Get(ctx context.Context, fileID string) (*StoredImage, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, fileID, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to load image", err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; Stat surfaces NoSuchKey and gives us the metadata.
	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperrors.NotFound("file not found", err)
		}
		return nil, apperrors.StoreUnavailable("failed to load image", err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to load image", err)
	}
	return &StoredImage{
		FileID:   fileID,
		Filename: info.UserMetadata[filenameMetaKey],
		Data:     data,
	}, nil
}
