package mongo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	users  *mongo.Collection
	owned  *mongo.Collection
	onSale *mongo.Collection
	groups *mongo.Collection
	idols  *mongo.Collection
}

func NewUserRepository(db *mongo.Client, cfg config.MongoDBConfig) repository.UserRepository {
	database := db.Database(cfg.Database)
	return &userRepository{
		users:  database.Collection(userCollectionName),
		owned:  database.Collection(userPhotocardsCollectionName),
		onSale: database.Collection(userOnSaleCollectionName),
		groups: database.Collection(groupCollectionName),
		idols:  database.Collection(idolCollectionName),
	}
}

func (r *userRepository) GetProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}

	profile := &entity.Profile{UID: doc.UID, Email: doc.Email, Name: doc.Name}
	if profile.UID == "" {
		profile.UID = doc.ID
	}
	if doc.FavGroupRef != "" {
		group, err := r.resolveGroup(ctx, path.Base(doc.FavGroupRef))
		if err != nil {
			return nil, err
		}
		profile.FavGroup = &group
	}
	if doc.FavIdolRef != "" {
		idol, err := r.resolveIdol(ctx, doc.FavIdolRef)
		if err != nil {
			return nil, err
		}
		profile.FavIdol = &idol
	}
	return profile, nil
}

func (r *userRepository) resolveGroup(ctx context.Context, groupUID string) (entity.Group, error) {
	var doc groupDocument
	err := r.groups.FindOne(ctx, bson.M{"_id": groupUID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.Group{UID: groupUID, Name: groupUID}, nil
		}
		return entity.Group{}, fmt.Errorf("failed to resolve group %s: %w", groupUID, err)
	}
	return entity.Group{UID: doc.ID, Name: doc.Name}, nil
}

// resolveIdol reads a groups/{g}/idols/{i} reference.
func (r *userRepository) resolveIdol(ctx context.Context, ref string) (entity.Idol, error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 4 {
		return entity.Idol{}, fmt.Errorf("malformed idol reference %q: %w", ref, repository.ErrNotFound)
	}
	groupUID, idolUID := parts[1], parts[3]

	group, err := r.resolveGroup(ctx, groupUID)
	if err != nil {
		return entity.Idol{}, err
	}

	var doc idolDocument
	err = r.idols.FindOne(ctx, bson.M{"_id": compositeID(groupUID, idolUID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.Idol{UID: idolUID, Name: idolUID, Group: group}, nil
		}
		return entity.Idol{}, fmt.Errorf("failed to resolve idol %s: %w", ref, err)
	}
	return entity.Idol{UID: doc.UID, Name: doc.Name, Group: group}, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, profile entity.Profile) error {
	update := bson.M{"$set": bson.M{
		"uid":   profile.UID,
		"email": profile.Email,
		"name":  profile.Name,
	}}
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": profile.UID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", profile.UID, err)
	}
	return nil
}

func (r *userRepository) SetFavGroup(ctx context.Context, uid string, group *entity.Group) error {
	if group == nil {
		return r.updateUser(ctx, uid, bson.M{"$unset": bson.M{"fav_group_ref": ""}})
	}
	return r.updateUser(ctx, uid, bson.M{"$set": bson.M{"fav_group_ref": groupRef(group.UID)}})
}

func (r *userRepository) SetFavIdol(ctx context.Context, uid string, idol *entity.Idol) error {
	if idol == nil {
		return r.updateUser(ctx, uid, bson.M{"$unset": bson.M{"fav_idol_ref": ""}})
	}
	return r.updateUser(ctx, uid, bson.M{"$set": bson.M{"fav_idol_ref": idolRef(idol.Group.UID, idol.UID)}})
}

func (r *userRepository) updateUser(ctx context.Context, uid string, update bson.M) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", uid, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) AddOwned(ctx context.Context, uid, photocardID string) error {
	doc := userPhotocardDocument{
		ID:           compositeID(uid, photocardID),
		UserUID:      uid,
		PhotocardRef: path.Join(photocardRefPrefix, photocardID),
		AddedAt:      time.Now().UTC(),
	}
	_, err := r.owned.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to index photocard %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) RemoveOwned(ctx context.Context, uid, photocardID string) error {
	_, err := r.owned.DeleteOne(ctx, bson.M{"_id": compositeID(uid, photocardID)})
	if err != nil {
		return fmt.Errorf("failed to unindex photocard %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) ListOwned(ctx context.Context, uid string) ([]string, error) {
	var docs []userPhotocardDocument
	if err := r.list(ctx, r.owned, uid, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, path.Base(d.PhotocardRef))
	}
	return ids, nil
}

func (r *userRepository) AddOnSale(ctx context.Context, uid, photocardID string) error {
	doc := userSaleDocument{
		ID:             compositeID(uid, photocardID),
		UserUID:        uid,
		SaleListingRef: path.Join(marketRefPrefix, photocardID),
		AddedAt:        time.Now().UTC(),
	}
	_, err := r.onSale.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to index listing %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) RemoveOnSale(ctx context.Context, uid, photocardID string) error {
	_, err := r.onSale.DeleteOne(ctx, bson.M{"_id": compositeID(uid, photocardID)})
	if err != nil {
		return fmt.Errorf("failed to unindex listing %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) ListOnSale(ctx context.Context, uid string) ([]string, error) {
	var docs []userSaleDocument
	if err := r.list(ctx, r.onSale, uid, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, path.Base(d.SaleListingRef))
	}
	return ids, nil
}

func (r *userRepository) list(ctx context.Context, coll *mongo.Collection, uid string, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"user_uid": uid}, opts)
	if err != nil {
		return fmt.Errorf("failed to list %s for user %s: %w", coll.Name(), uid, err)
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s for user %s: %w", coll.Name(), uid, err)
	}
	return nil
}
