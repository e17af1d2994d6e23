package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"google.golang.org/api/iterator"
)

type catalogRepository struct {
	client *firestore.Client
}

func NewCatalogRepository(client *firestore.Client) repository.CatalogRepository {
	return &catalogRepository{client: client}
}

func (r *catalogRepository) group(groupUID string) *firestore.DocumentRef {
	return r.client.Collection(groupCollection).Doc(groupUID)
}

func (r *catalogRepository) idol(groupUID, idolUID string) *firestore.DocumentRef {
	return r.group(groupUID).Collection(idolSub).Doc(idolUID)
}

func (r *catalogRepository) album(groupUID, idolUID, albumUID string) *firestore.DocumentRef {
	return r.idol(groupUID, idolUID).Collection(albumSub).Doc(albumUID)
}

// ensure creates the node unless it already exists.
func ensure(ctx context.Context, ref *firestore.DocumentRef, name string) error {
	if _, err := ref.Create(ctx, nameDoc{Name: name}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to ensure %s: %w", ref.Path, err)
	}
	return nil
}

func (r *catalogRepository) EnsureGroup(ctx context.Context, group entity.Group) error {
	return ensure(ctx, r.group(group.UID), group.Name)
}

func (r *catalogRepository) EnsureIdol(ctx context.Context, idol entity.Idol) error {
	if err := r.EnsureGroup(ctx, idol.Group); err != nil {
		return err
	}
	return ensure(ctx, r.idol(idol.Group.UID, idol.UID), idol.Name)
}

func (r *catalogRepository) EnsureAlbum(ctx context.Context, idol entity.Idol, album entity.Album) error {
	if err := r.EnsureIdol(ctx, idol); err != nil {
		return err
	}
	return ensure(ctx, r.album(idol.Group.UID, idol.UID, album.UID), album.Name)
}

func (r *catalogRepository) ListGroups(ctx context.Context) ([]entity.Group, error) {
	it := r.client.Collection(groupCollection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var groups []entity.Group
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list groups: %w", repository.ErrQueryFailed, err)
		}
		var doc nameDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		groups = append(groups, entity.Group{UID: snap.Ref.ID, Name: doc.Name})
	}
	return groups, nil
}

func (r *catalogRepository) ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error) {
	groupSnap, err := r.group(groupUID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("group %s: %w", groupUID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get group %s: %w", repository.ErrQueryFailed, groupUID, err)
	}
	var groupDoc nameDoc
	if err := groupSnap.DataTo(&groupDoc); err != nil {
		return nil, fmt.Errorf("failed to decode group %s: %w", groupUID, err)
	}
	owner := entity.Group{UID: groupUID, Name: groupDoc.Name}

	it := r.group(groupUID).Collection(idolSub).OrderBy("name", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var idols []entity.Idol
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list idols of %s: %w", repository.ErrQueryFailed, groupUID, err)
		}
		var doc nameDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		idols = append(idols, entity.Idol{UID: snap.Ref.ID, Name: doc.Name, Group: owner})
	}
	return idols, nil
}

func (r *catalogRepository) ListAlbums(ctx context.Context, groupUID, idolUID string) ([]entity.Album, error) {
	it := r.idol(groupUID, idolUID).Collection(albumSub).OrderBy("name", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var albums []entity.Album
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list albums of %s/%s: %w", repository.ErrQueryFailed, groupUID, idolUID, err)
		}
		var doc nameDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		albums = append(albums, entity.Album{UID: snap.Ref.ID, Name: doc.Name})
	}
	return albums, nil
}

func (r *catalogRepository) AddToAlbum(ctx context.Context, p entity.Photocard) error {
	ref := r.album(p.GroupUID, p.IdolUID, p.AlbumUID).Collection(albumPhotocardsSub).Doc(p.ID)
	_, err := ref.Set(ctx, map[string]interface{}{
		"photocard_ref": r.client.Collection(photocardCollection).Doc(p.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to add photocard %s to album: %w", p.ID, err)
	}
	return nil
}

func (r *catalogRepository) RemoveFromAlbum(ctx context.Context, p entity.Photocard) error {
	ref := r.album(p.GroupUID, p.IdolUID, p.AlbumUID).Collection(albumPhotocardsSub).Doc(p.ID)
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to remove photocard %s from album: %w", p.ID, err)
	}
	return nil
}
