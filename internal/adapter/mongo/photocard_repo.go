package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type photocardRepository struct {
	collection *mongo.Collection
}

func NewPhotocardRepository(db *mongo.Client, cfg config.MongoDBConfig) repository.PhotocardRepository {
	return &photocardRepository{
		collection: db.Database(cfg.Database).Collection(photocardCollectionName),
	}
}

func (r *photocardRepository) Create(ctx context.Context, p entity.Photocard) error {
	_, err := r.collection.InsertOne(ctx, photocardDocumentFromEntity(p))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create photocard %s: %w", p.ID, err)
	}
	return nil
}

func (r *photocardRepository) GetByID(ctx context.Context, id string) (*entity.Photocard, error) {
	var doc photocardDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photocard by ID %s: %w", id, err)
	}
	p := doc.toEntity()
	return &p, nil
}

func (r *photocardRepository) TransferOwnership(ctx context.Context, id string, owner entity.Owner) error {
	update := bson.M{"$set": bson.M{
		"user":              owner.Email,
		"user_uid":          owner.UID,
		"user_display_name": owner.DisplayName,
		"favourite":         false,
	}}
	return r.update(ctx, id, update)
}

func (r *photocardRepository) SetFavourite(ctx context.Context, id string, favourite bool) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"favourite": favourite}})
}

func (r *photocardRepository) update(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update photocard %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *photocardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete photocard %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
