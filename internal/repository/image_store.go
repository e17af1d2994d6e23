package repository

import "context"

// ObjectStore holds photocard images remotely.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	// Get fails with ErrTooLarge when the object is bigger than maxBytes.
	Get(ctx context.Context, path string, maxBytes int64) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// LocalImageCache is the on-disk image cache keyed by photocard id.
// Reads never block on the network.
type LocalImageCache interface {
	Read(photocardID string) ([]byte, bool)
	Write(photocardID string, data []byte) error
	Delete(photocardID string) error
}
