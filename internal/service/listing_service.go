package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

const (
	purchaseSuccess = "success"
	purchaseSold    = "sold"
	purchaseFailed  = "error"
)

type SaleListingParams struct {
	PhotocardID string
	Price       int
	Location    entity.Location
	Condition   entity.Condition
}

type ListingService interface {
	// AddSaleListing lists a photocard of the caller. Listing it again
	// replaces the previous listing.
	AddSaleListing(ctx context.Context, s *Session, params SaleListingParams) (*entity.SaleListing, error)
	DeleteSaleListing(ctx context.Context, s *Session, photocardID string) error
	LoadUserSales(ctx context.Context, s *Session) error
	Purchase(ctx context.Context, buyer *Session, photocardID string) (*entity.Photocard, error)
	// RetireListing removes the market document of a photocard and every
	// trace of the listing in live sessions. It reports whether this call
	// deleted the document.
	RetireListing(ctx context.Context, sellerUID, photocardID string) (bool, error)
}

type listingService struct {
	market      repository.MarketRepository
	photocards  repository.PhotocardRepository
	users       repository.UserRepository
	resolver    *PhotocardResolver
	images      *ImageService
	sessions    *SessionManager
	events      *eventEmitter
	receipts    ReceiptService
	metrics     *metrics.MetricsManager
	concurrency int
	log         logger.Logger
	now         func() time.Time
}

func NewListingService(
	market repository.MarketRepository,
	photocards repository.PhotocardRepository,
	users repository.UserRepository,
	resolver *PhotocardResolver,
	images *ImageService,
	sessions *SessionManager,
	publisher EventPublisher,
	instanceID string,
	receipts ReceiptService,
	m *metrics.MetricsManager,
	concurrency int,
	log logger.Logger,
) ListingService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &listingService{
		market:      market,
		photocards:  photocards,
		users:       users,
		resolver:    resolver,
		images:      images,
		sessions:    sessions,
		events:      newEventEmitter(publisher, instanceID, log),
		receipts:    receipts,
		metrics:     m,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

func (l *listingService) AddSaleListing(ctx context.Context, s *Session, params SaleListingParams) (*entity.SaleListing, error) {
	entry, err := entity.NewMarketEntry(params.PhotocardID, params.Price, params.Location, params.Condition, l.now())
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ListingService.AddSaleListing")
	defer span.End()
	span.SetAttributes(attribute.String("photocard_id", entry.PhotocardID), attribute.Int("price", entry.Price))

	p, err := l.resolver.Fresh(ctx, entry.PhotocardID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !p.OwnedBy(s.UID()) {
		l.log.Warnf("User %s attempted to list photocard %s owned by %s", s.UID(), p.ID, p.Owner.UID)
		return nil, ErrNotOwner
	}

	if err := l.market.Put(ctx, *entry); err != nil {
		l.log.Errorf("Failed to write sale listing for photocard %s: %v", p.ID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "market write failed")
		return nil, fmt.Errorf("failed to save sale listing: %w", err)
	}
	if err := l.users.AddOnSale(ctx, s.UID(), p.ID); err != nil {
		l.log.Warnf("Failed to index sale listing %s for user %s: %v", p.ID, s.UID(), err)
	}

	listing := entity.NewSaleListing(*p, *entry)
	listing.Photocard.Image = l.imageFor(s, p.ID)
	s.Store.UpsertUserSale(listing)

	l.metrics.ListingsCreatedTotal.Inc()
	l.events.emit(ctx, MarketEvent{
		Type:        EventListingCreated,
		PhotocardID: p.ID,
		SellerUID:   s.UID(),
		Price:       entry.Price,
	})
	l.log.Infof("Photocard %s listed by %s for %d", p.ID, s.UID(), entry.Price)
	return &listing, nil
}

// imageFor returns the image a session already holds for a photocard.
func (l *listingService) imageFor(s *Session, photocardID string) []byte {
	if p, ok := s.Store.PortfolioCard(photocardID); ok && len(p.Image) > 0 {
		return p.Image
	}
	if l.images == nil {
		return nil
	}
	data, _ := l.images.Local(photocardID)
	return data
}

func (l *listingService) DeleteSaleListing(ctx context.Context, s *Session, photocardID string) error {
	ctx, span := tracer.Start(ctx, "ListingService.DeleteSaleListing")
	defer span.End()
	span.SetAttributes(attribute.String("photocard_id", photocardID))

	p, err := l.resolver.Fresh(ctx, photocardID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		span.RecordError(err)
		return err
	}
	if p == nil {
		// Without the photocard, only the caller's own sale index proves ownership.
		onSale, err := l.users.ListOnSale(ctx, s.UID())
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			span.RecordError(err)
			return fmt.Errorf("failed to list sale index: %w", err)
		}
		if !slices.Contains(onSale, photocardID) {
			return ErrNotOwner
		}
	} else if !p.OwnedBy(s.UID()) {
		return ErrNotOwner
	}

	deleted, err := l.RetireListing(ctx, s.UID(), photocardID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if deleted {
		l.events.emit(ctx, MarketEvent{Type: EventListingDeleted, PhotocardID: photocardID, SellerUID: s.UID()})
	}
	return nil
}

func (l *listingService) RetireListing(ctx context.Context, sellerUID, photocardID string) (bool, error) {
	deleted, err := l.market.Delete(ctx, photocardID)
	if err != nil {
		l.log.Errorf("Failed to delete sale listing %s: %v", photocardID, err)
		return false, fmt.Errorf("failed to delete sale listing: %w", err)
	}
	if err := l.users.RemoveOnSale(ctx, sellerUID, photocardID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		l.log.Warnf("Failed to remove sale index %s of user %s: %v", photocardID, sellerUID, err)
	}
	l.sessions.RetireListing(photocardID)
	if deleted {
		l.metrics.ListingsDeletedTotal.Inc()
	}
	return deleted, nil
}

func (l *listingService) LoadUserSales(ctx context.Context, s *Session) error {
	ctx, span := tracer.Start(ctx, "ListingService.LoadUserSales")
	defer span.End()

	ids, err := l.users.ListOnSale(ctx, s.UID())
	if err != nil {
		l.log.Errorf("Failed to list sale index of user %s: %v", s.UID(), err)
		span.RecordError(err)
		return fmt.Errorf("failed to load sale listings: %w", err)
	}

	resolved := make([]*entity.SaleListing, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			entry, err := l.market.Get(gctx, id)
			if err != nil {
				l.log.Warnf("Sale index of %s points at missing listing %s: %v", s.UID(), id, err)
				return nil
			}
			p, err := l.resolver.Resolve(gctx, id)
			if err != nil {
				l.log.Warnf("Skipping sale listing %s: %v", id, err)
				return nil
			}
			listing := entity.NewSaleListing(*p, *entry)
			listing.Photocard.Image = l.imageFor(s, id)
			resolved[i] = &listing
			return nil
		})
	}
	_ = g.Wait()

	listings := make([]entity.SaleListing, 0, len(resolved))
	for _, r := range resolved {
		if r != nil {
			listings = append(listings, *r)
		}
	}
	s.Store.SetUserSales(listings)
	span.SetAttributes(attribute.Int("listings", len(listings)))

	if l.images == nil {
		return nil
	}
	for _, listing := range listings {
		if len(listing.Photocard.Image) > 0 {
			continue
		}
		data, err := l.images.Fetch(ctx, listing.Photocard)
		if err != nil {
			l.log.Warnf("Image of sale listing %s unavailable: %v", listing.ID(), err)
			continue
		}
		s.Store.UpdateUserSale(listing.ID(), func(sl *entity.SaleListing) { sl.Photocard.Image = data })
	}
	return nil
}

func (l *listingService) Purchase(ctx context.Context, buyer *Session, photocardID string) (*entity.Photocard, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Purchase")
	defer span.End()
	span.SetAttributes(attribute.String("photocard_id", photocardID), attribute.String("buyer_uid", buyer.UID()))

	entry, err := l.market.Get(ctx, photocardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load sale listing: %w", err)
	}
	p, err := l.resolver.Fresh(ctx, photocardID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if p.OwnedBy(buyer.UID()) {
		return nil, ErrOwnListing
	}
	seller := p.Owner

	deleted, err := l.RetireListing(ctx, seller.UID, photocardID)
	if err != nil {
		l.metrics.PurchasesTotal.WithLabelValues(purchaseFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "retire failed")
		return nil, err
	}
	if !deleted {
		l.metrics.PurchasesTotal.WithLabelValues(purchaseSold).Inc()
		l.log.Infof("User %s lost the race for photocard %s", buyer.UID(), photocardID)
		return nil, ErrListingSold
	}

	newOwner := buyer.Owner()
	if profile, err := l.users.GetProfile(ctx, buyer.UID()); err == nil && profile.Name != "" {
		newOwner.DisplayName = profile.Name
	}
	if err := l.photocards.TransferOwnership(ctx, photocardID, newOwner); err != nil {
		l.metrics.PurchasesTotal.WithLabelValues(purchaseFailed).Inc()
		l.log.Errorf("Listing %s retired but ownership transfer to %s failed: %v", photocardID, buyer.UID(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ownership transfer failed")
		return nil, fmt.Errorf("failed to transfer photocard: %w", err)
	}
	l.resolver.Invalidate(ctx, photocardID)

	bought := *p
	bought.Owner = newOwner
	bought.Favourite = false
	if err := l.users.AddOwned(ctx, buyer.UID(), photocardID); err != nil {
		l.log.Errorf("Failed to index photocard %s for buyer %s: %v", photocardID, buyer.UID(), err)
	}
	bought.Image = l.imageFor(buyer, photocardID)
	buyer.Store.AppendPortfolio(bought)

	if err := l.users.RemoveOwned(ctx, seller.UID, photocardID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		l.log.Warnf("Failed to drop photocard %s from seller %s: %v", photocardID, seller.UID, err)
	}
	l.sessions.RemovePhotocard(seller.UID, photocardID)

	l.events.emit(ctx, MarketEvent{
		Type:        EventListingPurchased,
		PhotocardID: photocardID,
		SellerUID:   seller.UID,
		BuyerUID:    buyer.UID(),
		Price:       entry.Price,
	})
	if l.receipts != nil {
		l.receipts.SendPurchaseReceipts(ctx, PurchaseReceipt{
			Listing: entity.NewSaleListing(bought, *entry),
			Seller:  seller,
			Buyer:   newOwner,
		})
	}
	l.metrics.PurchasesTotal.WithLabelValues(purchaseSuccess).Inc()
	l.log.Infof("Photocard %s sold by %s to %s for %d", photocardID, seller.UID, buyer.UID(), entry.Price)
	return &bought, nil
}
