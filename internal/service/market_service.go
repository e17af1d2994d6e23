package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

var tracer = otel.Tracer("photocard-service/service")

type MarketService interface {
	// ApplyFilter replaces the session buy market with the listings accepted
	// by f. It returns once every listing and image has been resolved.
	ApplyFilter(ctx context.Context, s *Session, f entity.Filter) error
	SortBuyMarket(s *Session, key SortKey, order SortOrder) error
	SearchBuyMarket(s *Session, scope entity.SearchScope, term string) []entity.SaleListing
}

type marketService struct {
	market      repository.MarketRepository
	resolver    *PhotocardResolver
	images      *ImageService
	concurrency int
	log         logger.Logger
}

func NewMarketService(
	market repository.MarketRepository,
	resolver *PhotocardResolver,
	images *ImageService,
	concurrency int,
	log logger.Logger,
) MarketService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &marketService{
		market:      market,
		resolver:    resolver,
		images:      images,
		concurrency: concurrency,
		log:         log,
	}
}

func (m *marketService) ApplyFilter(ctx context.Context, s *Session, f entity.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	f = f.Clamp()

	ctx, span := tracer.Start(ctx, "MarketService.ApplyFilter")
	defer span.End()
	span.SetAttributes(
		attribute.String("uid", s.UID()),
		attribute.Int("price_lo", f.PriceLo),
		attribute.Int("price_hi", f.PriceHi),
	)

	gen := s.Store.ResetBuyMarket()

	entries, err := m.market.Query(ctx, repository.MarketQueryFromFilter(f))
	if err != nil {
		m.log.Errorf("Market query failed for user %s: %v", s.UID(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "market query failed")
		return nil
	}
	span.SetAttributes(attribute.Int("results", len(entries)))

	uid := s.UID()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, e := range entries {
		if !f.Accepts(e) {
			continue
		}
		entry := e
		g.Go(func() error {
			m.resolveListing(gctx, s, gen, uid, entry)
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (m *marketService) resolveListing(ctx context.Context, s *Session, gen uint64, uid string, e entity.MarketEntry) {
	p, err := m.resolver.Resolve(ctx, e.PhotocardID)
	if err != nil {
		m.log.Warnf("Skipping market listing %s: %v", e.PhotocardID, err)
		return
	}
	if p.OwnedBy(uid) {
		return
	}

	listing := entity.NewSaleListing(*p, e)
	img, cached := m.images.Local(p.ID)
	if cached {
		listing.Photocard.Image = img
	}
	if !s.Store.AppendBuyMarket(gen, listing) || cached {
		return
	}

	data, err := m.images.Fetch(ctx, *p)
	if err != nil {
		m.log.Warnf("Image of market listing %s unavailable: %v", p.ID, err)
		return
	}
	s.Store.SetBuyMarketImage(p.ID, data)
}

func (m *marketService) SortBuyMarket(s *Session, key SortKey, order SortOrder) error {
	sorted, err := SortListings(s.Store.BuyMarketSnapshot(), key, order, s.Store.Location())
	if err != nil {
		return err
	}
	s.Store.ReorderBuyMarket(sorted)
	return nil
}

func (m *marketService) SearchBuyMarket(s *Session, scope entity.SearchScope, term string) []entity.SaleListing {
	return Search(s.Store.BuyMarketSnapshot(), scope, term)
}
