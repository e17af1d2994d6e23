// Package filecache stores photocard images on local disk as {id}.jpg.
package filecache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

var ErrInvalidID = errors.New("filecache: invalid photocard id")

type Cache struct {
	dir string
}

var _ repository.LocalImageCache = (*Cache)(nil)

func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image cache dir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", ErrInvalidID
	}
	return filepath.Join(c.dir, entity.ImageFileName(id)), nil
}

func (c *Cache) Read(id string) ([]byte, bool) {
	p, err := c.path(id)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Write replaces the cached file atomically, so a concurrent Read sees either
// the old image or the new one.
func (c *Cache) Write(id string, data []byte) error {
	p, err := c.path(id)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, ".tmp-"+id+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", id, err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write image %s: %w", id, err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close image %s: %w", id, err)
	}
	if err = os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store image %s: %w", id, err)
	}
	return nil
}

// Delete treats an absent file as already deleted.
func (c *Cache) Delete(id string) error {
	p, err := c.path(id)
	if err != nil {
		return err
	}
	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", id, err)
	}
	return nil
}
