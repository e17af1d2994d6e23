package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Query(ctx context.Context, q repository.MarketQuery) ([]entity.MarketEntry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MarketEntry), args.Error(1)
}

func (m *MockMarketRepository) ListAll(ctx context.Context) ([]entity.MarketEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MarketEntry), args.Error(1)
}

func (m *MockMarketRepository) Get(ctx context.Context, photocardID string) (*entity.MarketEntry, error) {
	args := m.Called(ctx, photocardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MarketEntry), args.Error(1)
}

func (m *MockMarketRepository) Put(ctx context.Context, entry entity.MarketEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMarketRepository) Delete(ctx context.Context, photocardID string) (bool, error) {
	args := m.Called(ctx, photocardID)
	return args.Bool(0), args.Error(1)
}

type MockPhotocardRepository struct {
	mock.Mock
}

func (m *MockPhotocardRepository) Create(ctx context.Context, p entity.Photocard) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPhotocardRepository) GetByID(ctx context.Context, id string) (*entity.Photocard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := *args.Get(0).(*entity.Photocard)
	return &p, args.Error(1)
}

func (m *MockPhotocardRepository) TransferOwnership(ctx context.Context, id string, owner entity.Owner) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *MockPhotocardRepository) SetFavourite(ctx context.Context, id string, favourite bool) error {
	args := m.Called(ctx, id, favourite)
	return args.Error(0)
}

func (m *MockPhotocardRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPhotocardCache struct {
	mock.Mock
}

func (m *MockPhotocardCache) Get(ctx context.Context, id string) (*entity.Photocard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Photocard), args.Error(1)
}

func (m *MockPhotocardCache) Set(ctx context.Context, p entity.Photocard, ttl time.Duration) error {
	args := m.Called(ctx, p, ttl)
	return args.Error(0)
}

func (m *MockPhotocardCache) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, profile entity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserRepository) SetFavGroup(ctx context.Context, uid string, group *entity.Group) error {
	args := m.Called(ctx, uid, group)
	return args.Error(0)
}

func (m *MockUserRepository) SetFavIdol(ctx context.Context, uid string, idol *entity.Idol) error {
	args := m.Called(ctx, uid, idol)
	return args.Error(0)
}

func (m *MockUserRepository) AddOwned(ctx context.Context, uid, photocardID string) error {
	args := m.Called(ctx, uid, photocardID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveOwned(ctx context.Context, uid, photocardID string) error {
	args := m.Called(ctx, uid, photocardID)
	return args.Error(0)
}

func (m *MockUserRepository) ListOwned(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) AddOnSale(ctx context.Context, uid, photocardID string) error {
	args := m.Called(ctx, uid, photocardID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveOnSale(ctx context.Context, uid, photocardID string) error {
	args := m.Called(ctx, uid, photocardID)
	return args.Error(0)
}

func (m *MockUserRepository) ListOnSale(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) EnsureGroup(ctx context.Context, group entity.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockCatalogRepository) EnsureIdol(ctx context.Context, idol entity.Idol) error {
	args := m.Called(ctx, idol)
	return args.Error(0)
}

func (m *MockCatalogRepository) EnsureAlbum(ctx context.Context, idol entity.Idol, album entity.Album) error {
	args := m.Called(ctx, idol, album)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListGroups(ctx context.Context) ([]entity.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Group), args.Error(1)
}

func (m *MockCatalogRepository) ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error) {
	args := m.Called(ctx, groupUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Idol), args.Error(1)
}

func (m *MockCatalogRepository) ListAlbums(ctx context.Context, groupUID, idolUID string) ([]entity.Album, error) {
	args := m.Called(ctx, groupUID, idolUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Album), args.Error(1)
}

func (m *MockCatalogRepository) AddToAlbum(ctx context.Context, p entity.Photocard) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockCatalogRepository) RemoveFromAlbum(ctx context.Context, p entity.Photocard) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	args := m.Called(ctx, path, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Get(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	args := m.Called(ctx, path, maxBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(data []byte) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) SendPurchaseReceipts(ctx context.Context, r PurchaseReceipt) {
	m.Called(ctx, r)
}

// memImageCache is an in-memory LocalImageCache.
type memImageCache struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemImageCache() *memImageCache {
	return &memImageCache{files: make(map[string][]byte)}
}

func (c *memImageCache) Read(id string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.files[id]
	return data, ok
}

func (c *memImageCache) Write(id string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[id] = data
	return nil
}

func (c *memImageCache) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, id)
	return nil
}

// fixture wires services to mocks the way the application wires them to
// real adapters.
type fixture struct {
	market     *MockMarketRepository
	photocards *MockPhotocardRepository
	users      *MockUserRepository
	catalog    *MockCatalogRepository
	objects    *MockObjectStore
	normalizer *MockNormalizer
	publisher  *MockEventPublisher
	receipts   *MockReceiptService
	local      *memImageCache
	metrics    *metrics.MetricsManager
	sessions   *SessionManager
	resolver   *PhotocardResolver
	images     *ImageService

	listings  ListingService
	cards     PhotocardService
	marketSvc MarketService
	profiles  ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{
		market:     new(MockMarketRepository),
		photocards: new(MockPhotocardRepository),
		users:      new(MockUserRepository),
		catalog:    new(MockCatalogRepository),
		objects:    new(MockObjectStore),
		normalizer: new(MockNormalizer),
		publisher:  new(MockEventPublisher),
		receipts:   new(MockReceiptService),
		local:      newMemImageCache(),
		metrics:    metrics.NewMetricsManager("test"),
	}
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.receipts.On("SendPurchaseReceipts", mock.Anything, mock.Anything).Return().Maybe()

	f.sessions = NewSessionManager(log, f.metrics)
	f.resolver = NewPhotocardResolver(f.photocards, nil, time.Minute, log)
	f.images = NewImageService(f.objects, f.local, f.normalizer, 5<<20, f.metrics, log)
	f.listings = NewListingService(f.market, f.photocards, f.users, f.resolver, f.images, f.sessions,
		f.publisher, "instance-a", f.receipts, f.metrics, 4, log)
	f.cards = NewPhotocardService(f.photocards, f.users, f.catalog, f.resolver, f.images, f.listings,
		f.publisher, "instance-a", f.metrics, "images", 4, log)
	f.marketSvc = NewMarketService(f.market, f.resolver, f.images, 4, log)
	f.profiles = NewProfileService(f.users, f.catalog, f.resolver, f.images, 4, log)
	return f
}

func (f *fixture) session(uid string) *Session {
	return f.sessions.Get(auth.Identity{UID: uid, Email: uid + "@example.com", Name: uid})
}

var (
	testListedAt = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	testLocation = entity.Location{Title: "Melbourne", Coordinate: entity.Coordinate{Latitude: -37.8136, Longitude: 144.9631}}
)

func testCard(id, ownerUID, group, idol string) *entity.Photocard {
	p, err := entity.NewPhotocard(id, entity.Owner{UID: ownerUID, Email: ownerUID + "@example.com", DisplayName: ownerUID},
		group, idol, "Born Pink", "images", testListedAt)
	if err != nil {
		panic(err)
	}
	return p
}

func testEntry(id string, price int) entity.MarketEntry {
	return entity.MarketEntry{
		PhotocardID: id,
		Price:       price,
		Location:    testLocation,
		Condition:   entity.ConditionExcellent,
		ListedAt:    testListedAt,
	}
}

func testListing(id, ownerUID string, price int) entity.SaleListing {
	return entity.NewSaleListing(*testCard(id, ownerUID, "BLACKPINK", "Jisoo"), testEntry(id, price))
}

func listingIDs(listings []entity.SaleListing) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID()
	}
	return ids
}

func cardIDs(cards []entity.Photocard) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
