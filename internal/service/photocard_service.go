package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

type NewPhotocardParams struct {
	Group string
	Idol  string
	Album string
	Image []byte
}

type PhotocardService interface {
	AddPhotocard(ctx context.Context, s *Session, params NewPhotocardParams) (*entity.Photocard, error)
	// DeletePhotocard retires an active listing of the photocard before
	// removing the photocard itself.
	DeletePhotocard(ctx context.Context, s *Session, photocardID string) error
	ChangeFavourite(ctx context.Context, s *Session, photocardID string, favourite bool) error
	ChangePhotocardImage(ctx context.Context, s *Session, photocardID string, image []byte) error
	LoadPortfolio(ctx context.Context, s *Session) error
	LoadFavourites(ctx context.Context, s *Session) error
	LoadPortfolioCard(ctx context.Context, s *Session, photocardID string) error
}

type photocardService struct {
	photocards  repository.PhotocardRepository
	users       repository.UserRepository
	catalog     repository.CatalogRepository
	resolver    *PhotocardResolver
	images      *ImageService
	listings    ListingService
	events      *eventEmitter
	metrics     *metrics.MetricsManager
	imagePrefix string
	concurrency int
	log         logger.Logger
	now         func() time.Time
	newID       func() string
}

func NewPhotocardService(
	photocards repository.PhotocardRepository,
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	resolver *PhotocardResolver,
	images *ImageService,
	listings ListingService,
	publisher EventPublisher,
	instanceID string,
	m *metrics.MetricsManager,
	imagePrefix string,
	concurrency int,
	log logger.Logger,
) PhotocardService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &photocardService{
		photocards:  photocards,
		users:       users,
		catalog:     catalog,
		resolver:    resolver,
		images:      images,
		listings:    listings,
		events:      newEventEmitter(publisher, instanceID, log),
		metrics:     m,
		imagePrefix: imagePrefix,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

func (ps *photocardService) AddPhotocard(ctx context.Context, s *Session, params NewPhotocardParams) (*entity.Photocard, error) {
	if len(params.Image) == 0 {
		return nil, ErrImageRequired
	}
	owner := s.Owner()
	p, err := entity.NewPhotocard(ps.newID(), owner, params.Group, params.Idol, params.Album, ps.imagePrefix, ps.now())
	if err != nil {
		return nil, err
	}
	idol, err := entity.NewIdol(p.Group, p.Idol)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PhotocardService.AddPhotocard")
	defer span.End()
	span.SetAttributes(attribute.String("photocard_id", p.ID), attribute.String("uid", owner.UID))

	data, err := ps.images.Store(ctx, *p, params.Image)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if profile, err := ps.users.GetProfile(ctx, owner.UID); err == nil && profile.Name != "" {
		p.Owner.DisplayName = profile.Name
	}
	if err := ps.photocards.Create(ctx, p.WithoutImage()); err != nil {
		ps.log.Errorf("Failed to create photocard %s for %s: %v", p.ID, owner.UID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		ps.images.Delete(ctx, *p)
		return nil, fmt.Errorf("failed to create photocard: %w", err)
	}
	if err := ps.users.AddOwned(ctx, owner.UID, p.ID); err != nil {
		ps.log.Errorf("Failed to index photocard %s for %s: %v", p.ID, owner.UID, err)
	}

	album := entity.Album{UID: p.AlbumUID, Name: p.Album}
	if err := ps.catalog.EnsureAlbum(ctx, idol, album); err != nil {
		ps.log.Warnf("Failed to ensure album %s/%s/%s: %v", p.GroupUID, p.IdolUID, p.AlbumUID, err)
	} else if err := ps.catalog.AddToAlbum(ctx, *p); err != nil {
		ps.log.Warnf("Failed to add photocard %s to album %s: %v", p.ID, p.AlbumUID, err)
	}

	p.Image = data
	s.Store.AppendPortfolio(*p)

	ps.metrics.PhotocardsCreatedTotal.Inc()
	ps.events.emit(ctx, MarketEvent{Type: EventPhotocardCreated, PhotocardID: p.ID, SellerUID: owner.UID})
	ps.log.Infof("Photocard %s (%s / %s) added by %s", p.ID, p.Group, p.Idol, owner.UID)
	return p, nil
}

// ownedCard loads a photocard and checks it belongs to the session user.
func (ps *photocardService) ownedCard(ctx context.Context, s *Session, photocardID string) (*entity.Photocard, error) {
	p, err := ps.resolver.Fresh(ctx, photocardID)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(s.UID()) {
		ps.log.Warnf("User %s attempted to modify photocard %s owned by %s", s.UID(), photocardID, p.Owner.UID)
		return nil, ErrNotOwner
	}
	return p, nil
}

func (ps *photocardService) DeletePhotocard(ctx context.Context, s *Session, photocardID string) error {
	ctx, span := tracer.Start(ctx, "PhotocardService.DeletePhotocard")
	defer span.End()
	span.SetAttributes(attribute.String("photocard_id", photocardID))

	p, err := ps.ownedCard(ctx, s, photocardID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if _, err := ps.listings.RetireListing(ctx, s.UID(), photocardID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retire failed")
		return err
	}

	if err := ps.photocards.Delete(ctx, photocardID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		ps.log.Errorf("Failed to delete photocard %s: %v", photocardID, err)
		span.RecordError(err)
		return fmt.Errorf("failed to delete photocard: %w", err)
	}
	if err := ps.users.RemoveOwned(ctx, s.UID(), photocardID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		ps.log.Warnf("Failed to drop photocard %s from owner index: %v", photocardID, err)
	}
	if err := ps.catalog.RemoveFromAlbum(ctx, *p); err != nil && !errors.Is(err, repository.ErrNotFound) {
		ps.log.Warnf("Failed to drop photocard %s from album %s: %v", photocardID, p.AlbumUID, err)
	}
	ps.images.Delete(ctx, *p)
	ps.resolver.Invalidate(ctx, photocardID)
	s.Store.RemovePortfolio(photocardID)

	ps.metrics.PhotocardsDeletedTotal.Inc()
	ps.events.emit(ctx, MarketEvent{Type: EventPhotocardDeleted, PhotocardID: photocardID, SellerUID: s.UID()})
	ps.log.Infof("Photocard %s deleted by %s", photocardID, s.UID())
	return nil
}

func (ps *photocardService) ChangeFavourite(ctx context.Context, s *Session, photocardID string, favourite bool) error {
	p, err := ps.ownedCard(ctx, s, photocardID)
	if err != nil {
		return err
	}
	if err := ps.photocards.SetFavourite(ctx, photocardID, favourite); err != nil {
		ps.log.Errorf("Failed to set favourite on %s: %v", photocardID, err)
		return fmt.Errorf("failed to update favourite: %w", err)
	}
	ps.resolver.Invalidate(ctx, photocardID)

	if !s.Store.UpdatePortfolio(photocardID, func(c *entity.Photocard) { c.Favourite = favourite }) {
		p.Favourite = favourite
		p.Image, _ = ps.images.Local(photocardID)
		s.Store.AppendPortfolio(*p)
	}
	return nil
}

func (ps *photocardService) ChangePhotocardImage(ctx context.Context, s *Session, photocardID string, image []byte) error {
	if len(image) == 0 {
		return ErrImageRequired
	}
	p, err := ps.ownedCard(ctx, s, photocardID)
	if err != nil {
		return err
	}
	data, err := ps.images.Store(ctx, *p, image)
	if err != nil {
		return err
	}
	s.Store.UpdatePortfolio(photocardID, func(c *entity.Photocard) { c.Image = data })
	s.Store.UpdateUserSale(photocardID, func(l *entity.SaleListing) { l.Photocard.Image = data })
	ps.log.Infof("Image of photocard %s replaced by %s", photocardID, s.UID())
	return nil
}

func (ps *photocardService) LoadPortfolio(ctx context.Context, s *Session) error {
	ctx, span := tracer.Start(ctx, "PhotocardService.LoadPortfolio")
	defer span.End()

	ids, err := ps.users.ListOwned(ctx, s.UID())
	if err != nil {
		ps.log.Errorf("Failed to list photocards of %s: %v", s.UID(), err)
		span.RecordError(err)
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	resolved := ps.resolver.ResolveAll(ctx, ids, ps.concurrency)
	cards := make([]entity.Photocard, 0, len(resolved))
	for _, p := range resolved {
		if !p.OwnedBy(s.UID()) {
			ps.log.Warnf("Owner index of %s lists photocard %s now owned by %s", s.UID(), p.ID, p.Owner.UID)
			continue
		}
		p.Image, _ = ps.images.Local(p.ID)
		cards = append(cards, p)
	}
	s.Store.SetPortfolio(cards)
	span.SetAttributes(attribute.Int("photocards", len(cards)))

	for _, p := range cards {
		if len(p.Image) > 0 {
			continue
		}
		data, err := ps.images.Fetch(ctx, p)
		if err != nil {
			ps.log.Warnf("Image of photocard %s unavailable: %v", p.ID, err)
			continue
		}
		s.Store.UpdatePortfolio(p.ID, func(c *entity.Photocard) { c.Image = data })
	}
	return nil
}

// LoadFavourites reloads the portfolio; favourites are derived from it.
func (ps *photocardService) LoadFavourites(ctx context.Context, s *Session) error {
	return ps.LoadPortfolio(ctx, s)
}

func (ps *photocardService) LoadPortfolioCard(ctx context.Context, s *Session, photocardID string) error {
	p, err := ps.resolver.Fresh(ctx, photocardID)
	if err != nil {
		return err
	}
	if !p.OwnedBy(s.UID()) {
		return nil
	}
	if data, ok := ps.images.Local(photocardID); ok {
		p.Image = data
	} else if data, err := ps.images.Fetch(ctx, *p); err == nil {
		p.Image = data
	}
	s.Store.AppendPortfolio(*p)
	return nil
}
