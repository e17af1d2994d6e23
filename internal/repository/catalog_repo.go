package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

// CatalogRepository keeps the group -> idol -> album -> photocard tree.
type CatalogRepository interface {
	EnsureGroup(ctx context.Context, group entity.Group) error
	EnsureIdol(ctx context.Context, idol entity.Idol) error
	EnsureAlbum(ctx context.Context, idol entity.Idol, album entity.Album) error
	// ListGroups returns every group ordered by name.
	ListGroups(ctx context.Context) ([]entity.Group, error)
	// ListIdols fails with ErrNotFound when the group does not exist.
	ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error)
	ListAlbums(ctx context.Context, groupUID, idolUID string) ([]entity.Album, error)

	AddToAlbum(ctx context.Context, p entity.Photocard) error
	RemoveFromAlbum(ctx context.Context, p entity.Photocard) error
}
