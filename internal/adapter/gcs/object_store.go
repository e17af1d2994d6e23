package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"google.golang.org/api/option"
)

// ObjectStore keeps images in a Firebase Storage / GCS bucket, under the same
// object paths the mobile app writes.
type ObjectStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func NewObjectStore(ctx context.Context, cfg config.GCSConfig) (*ObjectStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient failed: %w", err)
	}
	return &ObjectStore{client: client, bucket: client.Bucket(cfg.Bucket)}, nil
}

var _ repository.ObjectStore = (*ObjectStore)(nil)

func (s *ObjectStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", path, err)
	}
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if err != nil {
		return nil, mapError(path, err)
	}
	defer r.Close()

	if r.Attrs.Size > maxBytes {
		return nil, fmt.Errorf("object %s is %d bytes: %w", path, r.Attrs.Size, repository.ErrTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("object %s: %w", path, repository.ErrTooLarge)
	}
	return data, nil
}

func (s *ObjectStore) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		return mapError(path, err)
	}
	return nil
}

func (s *ObjectStore) Close() error {
	return s.client.Close()
}

func mapError(path string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return repository.ErrNotFound
	}
	return fmt.Errorf("gcs object %s: %w", path, err)
}
