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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type marketRepository struct {
	collection *mongo.Collection
}

func NewMarketRepository(db *mongo.Client, cfg config.MongoDBConfig) repository.MarketRepository {
	return &marketRepository{
		collection: db.Database(cfg.Database).Collection(marketCollectionName),
	}
}

func (r *marketRepository) Query(ctx context.Context, q repository.MarketQuery) ([]entity.MarketEntry, error) {
	filter := bson.M{
		"price":     bson.M{"$gte": q.PriceLo, "$lte": q.PriceHi},
		"condition": bson.M{"$gte": q.ConditionLo, "$lte": q.ConditionHi},
		"date":      bson.M{"$gte": q.DateLo, "$lte": q.DateHi},
	}
	return r.find(ctx, filter)
}

func (r *marketRepository) ListAll(ctx context.Context) ([]entity.MarketEntry, error) {
	return r.find(ctx, bson.M{})
}

func (r *marketRepository) find(ctx context.Context, filter bson.M) ([]entity.MarketEntry, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query market: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []marketDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode market documents: %w", err)
	}

	entries := make([]entity.MarketEntry, 0, len(docs))
	for _, d := range docs {
		entry, err := d.toEntry()
		if err != nil {
			// unreadable date: the document cannot be placed on any date axis
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *marketRepository) Get(ctx context.Context, photocardID string) (*entity.MarketEntry, error) {
	var doc marketDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": photocardID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get market entry %s: %w", photocardID, err)
	}
	entry, err := doc.toEntry()
	if err != nil {
		return nil, fmt.Errorf("market entry %s: %w", photocardID, err)
	}
	return &entry, nil
}

func (r *marketRepository) Put(ctx context.Context, entry entity.MarketEntry) error {
	doc := marketDocumentFromEntry(entry)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put market entry %s: %w", entry.PhotocardID, err)
	}
	return nil
}

func (r *marketRepository) Delete(ctx context.Context, photocardID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": photocardID})
	if err != nil {
		return false, fmt.Errorf("failed to delete market entry %s: %w", photocardID, err)
	}
	return res.DeletedCount > 0, nil
}
