//go:build integration

package mongo

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	testClient *mongo.Client
	testCfg    config.MongoDBConfig
)

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}

	testCfg = config.MongoDBConfig{
		URI:      fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp")),
		Database: "photocard_service_test",
	}
	if err = pool.Retry(func() error {
		var errRetry error
		testClient, errRetry = NewClient(context.Background(), testCfg)
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}
	if err = EnsureIndexes(context.Background(), testClient, testCfg); err != nil {
		log.Fatalf("Could not create indexes: %s", err)
	}

	code := m.Run()

	_ = testClient.Disconnect(context.Background())
	if err = pool.Purge(resource); err != nil {
		log.Printf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func cleanDatabase(t *testing.T) {
	t.Helper()
	require.NoError(t, testClient.Database(testCfg.Database).Drop(context.Background()))
}

func listedAt(s string) time.Time {
	ts, err := entity.ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestMarketRepository_Query_ConjunctiveRanges(t *testing.T) {
	cleanDatabase(t)
	ctx := context.Background()
	repo := NewMarketRepository(testClient, testCfg)

	loc := entity.Location{Title: "Seoul", Coordinate: entity.Coordinate{Latitude: 37.56, Longitude: 126.97}}
	entries := []entity.MarketEntry{
		{PhotocardID: "a", Price: 5, Location: loc, Condition: entity.ConditionFair, ListedAt: listedAt("2023-01-01 10:00:00")},
		{PhotocardID: "b", Price: 20, Location: loc, Condition: entity.ConditionFair, ListedAt: listedAt("2023-01-01 10:00:00")},
		{PhotocardID: "c", Price: 100, Location: loc, Condition: entity.ConditionFair, ListedAt: listedAt("2023-01-01 10:00:00")},
		{PhotocardID: "d", Price: 10, Location: loc, Condition: entity.ConditionPoor, ListedAt: listedAt("2023-01-01 10:00:00")},
		{PhotocardID: "e", Price: 50, Location: loc, Condition: entity.ConditionFair, ListedAt: listedAt("2024-06-01 10:00:00")},
	}
	for _, e := range entries {
		require.NoError(t, repo.Put(ctx, e))
	}

	got, err := repo.Query(ctx, repository.MarketQuery{
		PriceLo: 10, PriceHi: 50,
		ConditionLo: int(entity.ConditionFair), ConditionHi: int(entity.ConditionBrandNew),
		DateLo: "2023-01-01 00:00:00", DateHi: "2023-12-31 23:59:59",
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].PhotocardID)
	assert.Equal(t, "Seoul", got[0].Location.Title)
	assert.InDelta(t, 37.56, got[0].Location.Latitude, 1e-9)
}

func TestMarketRepository_Put_OverwritesAndDeleteReportsOutcome(t *testing.T) {
	cleanDatabase(t)
	ctx := context.Background()
	repo := NewMarketRepository(testClient, testCfg)

	loc := entity.Location{Title: "Busan", Coordinate: entity.Coordinate{Latitude: 35.1, Longitude: 129.0}}
	require.NoError(t, repo.Put(ctx, entity.MarketEntry{PhotocardID: "pc1", Price: 30, Location: loc, ListedAt: listedAt("2024-01-01 00:00:00")}))
	require.NoError(t, repo.Put(ctx, entity.MarketEntry{PhotocardID: "pc1", Price: 45, Location: loc, ListedAt: listedAt("2024-01-02 00:00:00")}))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 45, all[0].Price)

	var raw bson.M
	require.NoError(t, testClient.Database(testCfg.Database).Collection(marketCollectionName).
		FindOne(ctx, bson.M{"_id": "pc1"}).Decode(&raw))
	assert.Equal(t, "photocards/pc1", raw["photocard_ref"])
	assert.Equal(t, "2024-01-02 00:00:00", raw["date"])
	assert.Equal(t, "Busan", raw["location"])

	deleted, err := repo.Delete(ctx, "pc1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "pc1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.Get(ctx, "pc1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPhotocardRepository_TransferOwnership_MergesOwnerFieldsOnly(t *testing.T) {
	cleanDatabase(t)
	ctx := context.Background()
	repo := NewPhotocardRepository(testClient, testCfg)

	seller := entity.Owner{UID: "u1", Email: "seller@example.com", DisplayName: "Seller"}
	p, err := entity.NewPhotocard("pc1", seller, "BLACKPINK", "Jennie", "The Album", "images", time.Now())
	require.NoError(t, err)
	p.Favourite = true
	require.NoError(t, repo.Create(ctx, *p))

	buyer := entity.Owner{UID: "u2", Email: "buyer@example.com", DisplayName: "Buyer"}
	require.NoError(t, repo.TransferOwnership(ctx, "pc1", buyer))

	got, err := repo.GetByID(ctx, "pc1")
	require.NoError(t, err)
	assert.Equal(t, buyer, got.Owner)
	assert.False(t, got.Favourite)
	assert.Equal(t, "Jennie", got.Idol)
	assert.Equal(t, "images/pc1.jpg", got.ImagePath)

	assert.ErrorIs(t, repo.TransferOwnership(ctx, "missing", buyer), repository.ErrNotFound)
}

func TestUserRepository_IndexesAndBias(t *testing.T) {
	cleanDatabase(t)
	ctx := context.Background()
	users := NewUserRepository(testClient, testCfg)
	catalog := NewCatalogRepository(testClient, testCfg)

	require.NoError(t, users.UpsertProfile(ctx, entity.Profile{UID: "u1", Email: "a@example.com", Name: "Ann"}))
	require.NoError(t, users.AddOwned(ctx, "u1", "pc1"))
	require.NoError(t, users.AddOwned(ctx, "u1", "pc2"))
	require.NoError(t, users.AddOwned(ctx, "u1", "pc1"))
	require.NoError(t, users.RemoveOwned(ctx, "u1", "pc2"))

	owned, err := users.ListOwned(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pc1"}, owned)

	require.NoError(t, users.AddOnSale(ctx, "u1", "pc1"))
	onSale, err := users.ListOnSale(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pc1"}, onSale)

	idol, err := entity.NewIdol("BLACKPINK", "Rosé")
	require.NoError(t, err)
	require.NoError(t, catalog.EnsureIdol(ctx, idol))
	require.NoError(t, users.SetFavIdol(ctx, "u1", &idol))
	require.NoError(t, users.SetFavGroup(ctx, "u1", &idol.Group))

	profile, err := users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile.FavIdol)
	require.NotNil(t, profile.FavGroup)
	assert.Equal(t, "Rosé", profile.FavIdol.Name)
	assert.Equal(t, "BLACKPINK", profile.FavIdol.Group.Name)

	require.NoError(t, users.SetFavIdol(ctx, "u1", nil))
	profile, err = users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, profile.FavIdol)
	assert.NotNil(t, profile.FavGroup)
}

func TestCatalogRepository_EnsureAlbumIsIdempotent(t *testing.T) {
	cleanDatabase(t)
	ctx := context.Background()
	catalog := NewCatalogRepository(testClient, testCfg)

	idol, err := entity.NewIdol("TWICE", "Nayeon")
	require.NoError(t, err)
	album := entity.Album{UID: "im nayeon", Name: "IM NAYEON"}

	require.NoError(t, catalog.EnsureAlbum(ctx, idol, album))
	require.NoError(t, catalog.EnsureAlbum(ctx, idol, album))
	require.NoError(t, catalog.EnsureAlbum(ctx, idol, entity.Album{UID: "formula of love", Name: "Formula of Love"}))

	albums, err := catalog.ListAlbums(ctx, "twice", "nayeon")
	require.NoError(t, err)
	assert.Equal(t, []entity.Album{
		{UID: "formula of love", Name: "Formula of Love"},
		{UID: "im nayeon", Name: "IM NAYEON"},
	}, albums)
}

func TestCatalogRepository_ListGroupsAndIdols(t *testing.T) {
	cleanDatabase(t)
	ctx := context.Background()
	catalog := NewCatalogRepository(testClient, testCfg)

	for _, names := range [][2]string{{"TWICE", "Nayeon"}, {"TWICE", "Jihyo"}, {"BLACKPINK", "Jisoo"}} {
		idol, err := entity.NewIdol(names[0], names[1])
		require.NoError(t, err)
		require.NoError(t, catalog.EnsureIdol(ctx, idol))
	}

	groups, err := catalog.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.Group{
		{UID: "blackpink", Name: "BLACKPINK"},
		{UID: "twice", Name: "TWICE"},
	}, groups)

	idols, err := catalog.ListIdols(ctx, "twice")
	require.NoError(t, err)
	twice := entity.Group{UID: "twice", Name: "TWICE"}
	assert.Equal(t, []entity.Idol{
		{UID: "jihyo", Name: "Jihyo", Group: twice},
		{UID: "nayeon", Name: "Nayeon", Group: twice},
	}, idols)

	_, err = catalog.ListIdols(ctx, "itzy")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
