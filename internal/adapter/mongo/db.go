package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

const (
	marketCollectionName         = "market"
	photocardCollectionName      = "photocards"
	userCollectionName           = "users"
	userPhotocardsCollectionName = "user_photocards"
	userOnSaleCollectionName     = "user_photocards_on_sale"
	groupCollectionName          = "catalog_groups"
	idolCollectionName           = "catalog_idols"
	albumCollectionName          = "catalog_albums"
	albumPhotocardCollectionName = "album_photocards"
)

func NewClient(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	if cfg.User != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.User,
			Password: cfg.Password,
		})
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, connectTimeout)
	defer cancelConnect()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: mongodb connect: %w", repository.ErrConnectionFailed, err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, pingTimeout)
	defer cancelPing()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: mongodb ping: %w", repository.ErrConnectionFailed, err)
	}

	return client, nil
}

// EnsureIndexes creates the secondary indexes the market range query and the
// per-user index listings rely on.
func EnsureIndexes(ctx context.Context, client *mongo.Client, cfg config.MongoDBConfig) error {
	db := client.Database(cfg.Database)

	if _, err := db.Collection(marketCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create market indexes: %w", err)
	}

	for _, name := range []string{userPhotocardsCollectionName, userOnSaleCollectionName} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_uid", Value: 1}},
		}); err != nil {
			return fmt.Errorf("failed to create %s index: %w", name, err)
		}
	}

	if _, err := db.Collection(albumCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "group_uid", Value: 1}, {Key: "idol_uid", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create album index: %w", err)
	}
	return nil
}

func compositeID(parts ...string) string {
	return strings.Join(parts, "/")
}
