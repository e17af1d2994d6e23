package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const noSuchKey = "NoSuchKey"

type objectStore struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

// NewObjectStore connects to MinIO and creates the bucket when it is missing.
func NewObjectStore(ctx context.Context, cfg config.MinioConfig, log logger.Logger) (repository.ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errExists)
		}
	} else {
		log.Infof("minio: created bucket %s", cfg.Bucket)
	}

	return &objectStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

func (s *objectStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", path, s.bucket, err)
	}
	s.log.Debugf("minio: uploaded %s (%d bytes)", path, len(data))
	return nil
}

func (s *objectStore) Get(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(path, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, s.mapError(path, err)
	}
	if info.Size > maxBytes {
		return nil, fmt.Errorf("object %s is %d bytes: %w", path, info.Size, repository.ErrTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(obj, maxBytes+1))
	if err != nil {
		return nil, s.mapError(path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("object %s: %w", path, repository.ErrTooLarge)
	}
	return data, nil
}

func (s *objectStore) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return s.mapError(path, err)
	}
	return nil
}

func (s *objectStore) mapError(path string, err error) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return repository.ErrNotFound
	}
	return fmt.Errorf("minio object %s: %w", path, err)
}
