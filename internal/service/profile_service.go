package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

type ProfileService interface {
	// EnsureProfile creates the user document on first sign-in.
	EnsureProfile(ctx context.Context, s *Session) (*entity.Profile, error)
	LoadProfile(ctx context.Context, s *Session) (*entity.Profile, error)
	LoadExternalProfile(ctx context.Context, s *Session, uid string) (*entity.ExternalProfile, error)
	LoadAlbums(ctx context.Context, s *Session, group, idol string) ([]entity.Album, error)
	ListGroups(ctx context.Context) ([]entity.Group, error)
	// ListIdols lists the idols of the group with groupUID.
	ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error)
	SetFavGroup(ctx context.Context, s *Session, groupName string) (*entity.Group, error)
	SetFavIdol(ctx context.Context, s *Session, groupName, idolName string) (*entity.Idol, error)
	ClearBiasGroup(ctx context.Context, s *Session) error
	ClearBiasIdol(ctx context.Context, s *Session) error
}

type profileService struct {
	users       repository.UserRepository
	catalog     repository.CatalogRepository
	resolver    *PhotocardResolver
	images      *ImageService
	concurrency int
	log         logger.Logger
}

func NewProfileService(
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	resolver *PhotocardResolver,
	images *ImageService,
	concurrency int,
	log logger.Logger,
) ProfileService {
	return &profileService{
		users:       users,
		catalog:     catalog,
		resolver:    resolver,
		images:      images,
		concurrency: concurrency,
		log:         log,
	}
}

func (p *profileService) EnsureProfile(ctx context.Context, s *Session) (*entity.Profile, error) {
	profile, err := p.users.GetProfile(ctx, s.UID())
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	owner := s.Owner()
	created := entity.Profile{UID: owner.UID, Email: owner.Email, Name: owner.DisplayName}
	if err := p.users.UpsertProfile(ctx, created); err != nil {
		p.log.Errorf("Failed to create profile for %s: %v", owner.UID, err)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	p.log.Infof("Profile created for %s", owner.UID)
	return &created, nil
}

func (p *profileService) LoadProfile(ctx context.Context, s *Session) (*entity.Profile, error) {
	profile, err := p.EnsureProfile(ctx, s)
	if err != nil {
		return nil, err
	}
	s.Store.SetFavGroup(profile.FavGroup)
	s.Store.SetFavIdol(profile.FavIdol)
	return profile, nil
}

func (p *profileService) LoadExternalProfile(ctx context.Context, s *Session, uid string) (*entity.ExternalProfile, error) {
	ctx, span := tracer.Start(ctx, "ProfileService.LoadExternalProfile")
	defer span.End()

	profile, err := p.users.GetProfile(ctx, uid)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load profile of %s: %w", uid, err)
	}
	ids, err := p.users.ListOwned(ctx, uid)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list photocards of %s: %w", uid, err)
	}

	favourites := make([]entity.Photocard, 0)
	for _, card := range p.resolver.ResolveAll(ctx, ids, p.concurrency) {
		if !card.Favourite || !card.OwnedBy(uid) {
			continue
		}
		if data, ok := p.images.Local(card.ID); ok {
			card.Image = data
		} else if data, err := p.images.Fetch(ctx, card); err == nil {
			card.Image = data
		} else {
			p.log.Warnf("Image of photocard %s unavailable: %v", card.ID, err)
		}
		favourites = append(favourites, card)
	}

	ext := entity.ExternalProfile{
		UID:        profile.UID,
		Name:       profile.Name,
		FavGroup:   profile.FavGroup,
		FavIdol:    profile.FavIdol,
		Favourites: favourites,
	}
	s.Store.SetExternalProfile(ext)
	return &ext, nil
}

func (p *profileService) LoadAlbums(ctx context.Context, s *Session, group, idol string) ([]entity.Album, error) {
	i, err := entity.NewIdol(group, idol)
	if err != nil {
		return nil, err
	}
	albums, err := p.catalog.ListAlbums(ctx, i.Group.UID, i.UID)
	if err != nil {
		p.log.Errorf("Failed to list albums of %s/%s: %v", i.Group.UID, i.UID, err)
		return nil, fmt.Errorf("failed to load albums: %w", err)
	}
	s.Store.SetAlbums(albums)
	return albums, nil
}

func (p *profileService) ListGroups(ctx context.Context) ([]entity.Group, error) {
	groups, err := p.catalog.ListGroups(ctx)
	if err != nil {
		p.log.Errorf("Failed to list groups: %v", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (p *profileService) ListIdols(ctx context.Context, groupUID string) ([]entity.Idol, error) {
	groupUID = entity.CatalogUID(groupUID)
	if groupUID == "" {
		return nil, fmt.Errorf("%w: group is required", entity.ErrInvalidPhotocard)
	}
	idols, err := p.catalog.ListIdols(ctx, groupUID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			p.log.Errorf("Failed to list idols of %s: %v", groupUID, err)
		}
		return nil, fmt.Errorf("failed to list idols: %w", err)
	}
	return idols, nil
}

func (p *profileService) SetFavGroup(ctx context.Context, s *Session, groupName string) (*entity.Group, error) {
	group, err := entity.NewGroup(groupName)
	if err != nil {
		return nil, err
	}
	if err := p.catalog.EnsureGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to ensure group %s: %w", group.UID, err)
	}
	if err := p.users.SetFavGroup(ctx, s.UID(), &group); err != nil {
		p.log.Errorf("Failed to set favourite group of %s: %v", s.UID(), err)
		return nil, fmt.Errorf("failed to set favourite group: %w", err)
	}
	s.Store.SetFavGroup(&group)
	return &group, nil
}

func (p *profileService) SetFavIdol(ctx context.Context, s *Session, groupName, idolName string) (*entity.Idol, error) {
	idol, err := entity.NewIdol(groupName, idolName)
	if err != nil {
		return nil, err
	}
	if err := p.catalog.EnsureIdol(ctx, idol); err != nil {
		return nil, fmt.Errorf("failed to ensure idol %s: %w", idol.UID, err)
	}
	if err := p.users.SetFavIdol(ctx, s.UID(), &idol); err != nil {
		p.log.Errorf("Failed to set favourite idol of %s: %v", s.UID(), err)
		return nil, fmt.Errorf("failed to set favourite idol: %w", err)
	}
	s.Store.SetFavIdol(&idol)
	return &idol, nil
}

func (p *profileService) ClearBiasGroup(ctx context.Context, s *Session) error {
	if err := p.users.SetFavGroup(ctx, s.UID(), nil); err != nil {
		return fmt.Errorf("failed to clear favourite group: %w", err)
	}
	s.Store.SetFavGroup(nil)
	return nil
}

func (p *profileService) ClearBiasIdol(ctx context.Context, s *Session) error {
	if err := p.users.SetFavIdol(ctx, s.UID(), nil); err != nil {
		return fmt.Errorf("failed to clear favourite idol: %w", err)
	}
	s.Store.SetFavIdol(nil)
	return nil
}
