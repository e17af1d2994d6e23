package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

// Random drives featured admission once a set is full.
type Random interface {
	Coin() bool
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRandom(seed int64) Random {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Coin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(2) == 1
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

type FeaturedService interface {
	// RefreshFeatured rebuilds the listings shown for the session's bias idol
	// and bias group.
	RefreshFeatured(ctx context.Context, s *Session) error
}

type featuredService struct {
	market   repository.MarketRepository
	users    repository.UserRepository
	resolver *PhotocardResolver
	images   *ImageService
	capacity int
	random   Random
	log      logger.Logger
}

func NewFeaturedService(
	market repository.MarketRepository,
	users repository.UserRepository,
	resolver *PhotocardResolver,
	images *ImageService,
	capacity int,
	random Random,
	log logger.Logger,
) FeaturedService {
	if random == nil {
		random = NewRandom(time.Now().UnixNano())
	}
	return &featuredService{
		market:   market,
		users:    users,
		resolver: resolver,
		images:   images,
		capacity: capacity,
		random:   random,
		log:      log,
	}
}

func (f *featuredService) bias(ctx context.Context, s *Session) (*entity.Idol, *entity.Group) {
	profile, err := f.users.GetProfile(ctx, s.UID())
	if err != nil {
		f.log.Warnf("Using session bias of %s, profile unavailable: %v", s.UID(), err)
		return s.Store.FavIdolSnapshot(), s.Store.FavGroupSnapshot()
	}
	return profile.FavIdol, profile.FavGroup
}

func (f *featuredService) RefreshFeatured(ctx context.Context, s *Session) error {
	ctx, span := tracer.Start(ctx, "FeaturedService.RefreshFeatured")
	defer span.End()

	idol, group := f.bias(ctx, s)

	entries, err := f.market.ListAll(ctx)
	if err != nil {
		f.log.Errorf("Failed to list market for featured listings of %s: %v", s.UID(), err)
		span.RecordError(err)
		return fmt.Errorf("failed to load featured listings: %w", err)
	}
	s.Store.ResetFeatured()
	span.SetAttributes(attribute.Int("candidates", len(entries)))

	for _, e := range entries {
		p, err := f.resolver.Resolve(ctx, e.PhotocardID)
		if err != nil {
			f.log.Warnf("Skipping featured candidate %s: %v", e.PhotocardID, err)
			continue
		}
		if p.OwnedBy(s.UID()) {
			continue
		}
		listing := entity.NewSaleListing(*p, e)
		img, cached := f.images.Local(p.ID)
		listing.Photocard.Image = img

		admitted := false
		if idol == nil || idol.Matches(*p) {
			admitted = s.Store.admitFeatured(featuredIdol, listing, f.capacity, f.random.Coin, f.random.Intn) || admitted
		}
		if group == nil || group.Matches(*p) {
			admitted = s.Store.admitFeatured(featuredGroup, listing, f.capacity, f.random.Coin, f.random.Intn) || admitted
		}
		if !admitted || cached {
			continue
		}
		data, err := f.images.Fetch(ctx, *p)
		if err != nil {
			f.log.Warnf("Image of featured listing %s unavailable: %v", p.ID, err)
			continue
		}
		s.Store.setFeaturedImage(p.ID, data)
	}
	return nil
}
