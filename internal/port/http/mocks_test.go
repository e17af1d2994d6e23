package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) ApplyFilter(ctx context.Context, s *service.Session, f entity.Filter) error {
	return m.Called(ctx, s, f).Error(0)
}

func (m *MockMarketService) SortBuyMarket(s *service.Session, key service.SortKey, order service.SortOrder) error {
	return m.Called(s, key, order).Error(0)
}

func (m *MockMarketService) SearchBuyMarket(s *service.Session, scope entity.SearchScope, term string) []entity.SaleListing {
	args := m.Called(s, scope, term)
	if v := args.Get(0); v != nil {
		return v.([]entity.SaleListing)
	}
	return nil
}

type MockFeaturedService struct {
	mock.Mock
}

func (m *MockFeaturedService) RefreshFeatured(ctx context.Context, s *service.Session) error {
	return m.Called(ctx, s).Error(0)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) AddSaleListing(ctx context.Context, s *service.Session, params service.SaleListingParams) (*entity.SaleListing, error) {
	args := m.Called(ctx, s, params)
	if v := args.Get(0); v != nil {
		return v.(*entity.SaleListing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) DeleteSaleListing(ctx context.Context, s *service.Session, photocardID string) error {
	return m.Called(ctx, s, photocardID).Error(0)
}

func (m *MockListingService) LoadUserSales(ctx context.Context, s *service.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockListingService) Purchase(ctx context.Context, buyer *service.Session, photocardID string) (*entity.Photocard, error) {
	args := m.Called(ctx, buyer, photocardID)
	if v := args.Get(0); v != nil {
		return v.(*entity.Photocard), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingService) RetireListing(ctx context.Context, sellerUID, photocardID string) (bool, error) {
	args := m.Called(ctx, sellerUID, photocardID)
	return args.Bool(0), args.Error(1)
}

type MockPhotocardService struct {
	mock.Mock
}

func (m *MockPhotocardService) AddPhotocard(ctx context.Context, s *service.Session, params service.NewPhotocardParams) (*entity.Photocard, error) {
	args := m.Called(ctx, s, params)
	if v := args.Get(0); v != nil {
		return v.(*entity.Photocard), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotocardService) DeletePhotocard(ctx context.Context, s *service.Session, photocardID string) error {
	return m.Called(ctx, s, photocardID).Error(0)
}

func (m *MockPhotocardService) ChangeFavourite(ctx context.Context, s *service.Session, photocardID string, favourite bool) error {
	return m.Called(ctx, s, photocardID, favourite).Error(0)
}

func (m *MockPhotocardService) ChangePhotocardImage(ctx context.Context, s *service.Session, photocardID string, image []byte) error {
	return m.Called(ctx, s, photocardID, image).Error(0)
}

func (m *MockPhotocardService) LoadPortfolio(ctx context.Context, s *service.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockPhotocardService) LoadFavourites(ctx context.Context, s *service.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockPhotocardService) LoadPortfolioCard(ctx context.Context, s *service.Session, photocardID string) error {
	return m.Called(ctx, s, photocardID).Error(0)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) EnsureProfile(ctx context.Context, s *service.Session) (*entity.Profile, error) {
	args := m.Called(ctx, s)
	if v := args.Get(0); v != nil {
		return v.(*entity.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) LoadProfile(ctx context.Context, s *service.Session) (*entity.Profile, error) {
	args := m.Called(ctx, s)
	if v := args.Get(0); v != nil {
		return v.(*entity.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) LoadExternalProfile(ctx context.Context, s *service.Session, uid string) (*entity.ExternalProfile, error) {
	args := m.Called(ctx, s, uid)
	if v := args.Get(0); v != nil {
		return v.(*entity.ExternalProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) LoadAlbums(ctx context.Context, s *service.Session, group, idol string) ([]entity.Album, error) {
	args := m.Called(ctx, s, group, idol)
	if v := args.Get(0); v != nil {
		return v.([]entity.Album), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) ListGroups(ctx context.Context) ([]entity.Group, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]entity.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error) {
	args := m.Called(ctx, groupUID)
	if v := args.Get(0); v != nil {
		return v.([]entity.Idol), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) SetFavGroup(ctx context.Context, s *service.Session, groupName string) (*entity.Group, error) {
	args := m.Called(ctx, s, groupName)
	if v := args.Get(0); v != nil {
		return v.(*entity.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) SetFavIdol(ctx context.Context, s *service.Session, groupName, idolName string) (*entity.Idol, error) {
	args := m.Called(ctx, s, groupName, idolName)
	if v := args.Get(0); v != nil {
		return v.(*entity.Idol), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) ClearBiasGroup(ctx context.Context, s *service.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockProfileService) ClearBiasIdol(ctx context.Context, s *service.Session) error {
	return m.Called(ctx, s).Error(0)
}
