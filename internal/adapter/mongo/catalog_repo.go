package mongo

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type catalogRepository struct {
	groups     *mongo.Collection
	idols      *mongo.Collection
	albums     *mongo.Collection
	albumCards *mongo.Collection
}

func NewCatalogRepository(db *mongo.Client, cfg config.MongoDBConfig) repository.CatalogRepository {
	database := db.Database(cfg.Database)
	return &catalogRepository{
		groups:     database.Collection(groupCollectionName),
		idols:      database.Collection(idolCollectionName),
		albums:     database.Collection(albumCollectionName),
		albumCards: database.Collection(albumPhotocardCollectionName),
	}
}

// upsert writes doc only when no document with that id exists yet.
func upsert(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure %s/%s: %w", coll.Name(), id, err)
	}
	return nil
}

func (r *catalogRepository) EnsureGroup(ctx context.Context, group entity.Group) error {
	return upsert(ctx, r.groups, group.UID, bson.M{"name": group.Name})
}

func (r *catalogRepository) EnsureIdol(ctx context.Context, idol entity.Idol) error {
	if err := r.EnsureGroup(ctx, idol.Group); err != nil {
		return err
	}
	id := compositeID(idol.Group.UID, idol.UID)
	return upsert(ctx, r.idols, id, bson.M{
		"group_uid": idol.Group.UID,
		"uid":       idol.UID,
		"name":      idol.Name,
	})
}

func (r *catalogRepository) EnsureAlbum(ctx context.Context, idol entity.Idol, album entity.Album) error {
	if err := r.EnsureIdol(ctx, idol); err != nil {
		return err
	}
	id := compositeID(idol.Group.UID, idol.UID, album.UID)
	return upsert(ctx, r.albums, id, bson.M{
		"group_uid": idol.Group.UID,
		"idol_uid":  idol.UID,
		"uid":       album.UID,
		"name":      album.Name,
	})
}

func byName() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
}

func (r *catalogRepository) ListGroups(ctx context.Context) ([]entity.Group, error) {
	cursor, err := r.groups.Find(ctx, bson.M{}, byName())
	if err != nil {
		return nil, fmt.Errorf("%w: list groups: %w", repository.ErrQueryFailed, err)
	}
	defer cursor.Close(ctx)

	var docs []groupDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}
	groups := make([]entity.Group, 0, len(docs))
	for _, d := range docs {
		groups = append(groups, entity.Group{UID: d.ID, Name: d.Name})
	}
	return groups, nil
}

func (r *catalogRepository) ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error) {
	var group groupDocument
	if err := r.groups.FindOne(ctx, bson.M{"_id": groupUID}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("group %s: %w", groupUID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: find group %s: %w", repository.ErrQueryFailed, groupUID, err)
	}

	cursor, err := r.idols.Find(ctx, bson.M{"group_uid": groupUID}, byName())
	if err != nil {
		return nil, fmt.Errorf("%w: list idols of %s: %w", repository.ErrQueryFailed, groupUID, err)
	}
	defer cursor.Close(ctx)

	var docs []idolDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode idols: %w", err)
	}
	owner := entity.Group{UID: group.ID, Name: group.Name}
	idols := make([]entity.Idol, 0, len(docs))
	for _, d := range docs {
		idols = append(idols, entity.Idol{UID: d.UID, Name: d.Name, Group: owner})
	}
	return idols, nil
}

func (r *catalogRepository) ListAlbums(ctx context.Context, groupUID, idolUID string) ([]entity.Album, error) {
	cursor, err := r.albums.Find(ctx, bson.M{"group_uid": groupUID, "idol_uid": idolUID}, byName())
	if err != nil {
		return nil, fmt.Errorf("%w: list albums of %s/%s: %w", repository.ErrQueryFailed, groupUID, idolUID, err)
	}
	defer cursor.Close(ctx)

	var docs []albumDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode albums: %w", err)
	}
	albums := make([]entity.Album, 0, len(docs))
	for _, d := range docs {
		albums = append(albums, entity.Album{UID: d.UID, Name: d.Name})
	}
	return albums, nil
}

func albumID(p entity.Photocard) string {
	return compositeID(p.GroupUID, p.IdolUID, p.AlbumUID)
}

func (r *catalogRepository) AddToAlbum(ctx context.Context, p entity.Photocard) error {
	doc := albumPhotocardDocument{
		ID:           compositeID(albumID(p), p.ID),
		AlbumID:      albumID(p),
		PhotocardRef: path.Join(photocardRefPrefix, p.ID),
	}
	_, err := r.albumCards.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to add photocard %s to album: %w", p.ID, err)
	}
	return nil
}

func (r *catalogRepository) RemoveFromAlbum(ctx context.Context, p entity.Photocard) error {
	_, err := r.albumCards.DeleteOne(ctx, bson.M{"_id": compositeID(albumID(p), p.ID)})
	if err != nil {
		return fmt.Errorf("failed to remove photocard %s from album: %w", p.ID, err)
	}
	return nil
}
