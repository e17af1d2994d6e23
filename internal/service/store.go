package service

import (
	"sync"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/listener"
)

// Store is the in-memory state of one session: the collections its screens
// render, each published on its own channel. Every mutation notifies the
// affected channels before the next mutation starts, so subscribers observe
// changes in the order they were made. Subscribers must not call Store
// mutators from inside a handler.
type Store struct {
	hub *listener.Hub

	Portfolio         *listener.Channel[[]entity.Photocard]
	Favourites        *listener.Channel[[]entity.Photocard]
	UserSales         *listener.Channel[[]entity.SaleListing]
	BuyMarket         *listener.Channel[[]entity.SaleListing]
	BiasIdolListings  *listener.Channel[[]entity.SaleListing]
	BiasGroupListings *listener.Channel[[]entity.SaleListing]
	Albums            *listener.Channel[[]entity.Album]
	FavIdol           *listener.Channel[*entity.Idol]
	FavGroup          *listener.Channel[*entity.Group]
	ExternalProfile   *listener.Channel[*entity.ExternalProfile]

	// seq is held across a mutation and its notifications.
	seq sync.Mutex

	mu        sync.RWMutex
	portfolio []entity.Photocard
	userSales []entity.SaleListing
	buyMarket []entity.SaleListing
	marketGen uint64
	biasIdol  []entity.SaleListing
	biasGroup []entity.SaleListing
	albums    []entity.Album
	favIdol   *entity.Idol
	favGroup  *entity.Group
	external  *entity.ExternalProfile
	location  *entity.Coordinate
}

func NewStore(hub *listener.Hub) *Store {
	s := &Store{hub: hub}

	s.Portfolio = listener.NewChannel[[]entity.Photocard](hub, TopicPortfolio).WithSnapshot(s.PortfolioSnapshot)
	s.Favourites = listener.NewChannel[[]entity.Photocard](hub, TopicFavourites)
	s.UserSales = listener.NewChannel[[]entity.SaleListing](hub, TopicUserSales).WithSnapshot(s.UserSalesSnapshot)
	s.BuyMarket = listener.NewChannel[[]entity.SaleListing](hub, TopicBuyMarket)
	s.BiasIdolListings = listener.NewChannel[[]entity.SaleListing](hub, TopicBiasIdolListings).WithSnapshot(s.BiasIdolSnapshot)
	s.BiasGroupListings = listener.NewChannel[[]entity.SaleListing](hub, TopicBiasGroupListings)
	s.Albums = listener.NewChannel[[]entity.Album](hub, TopicAlbums)
	s.FavIdol = listener.NewChannel[*entity.Idol](hub, TopicFavIdol).WithSnapshot(s.FavIdolSnapshot)
	s.FavGroup = listener.NewChannel[*entity.Group](hub, TopicFavGroup).WithSnapshot(s.FavGroupSnapshot)
	s.ExternalProfile = listener.NewChannel[*entity.ExternalProfile](hub, TopicExternalProfile)
	return s
}

func (s *Store) Hub() *listener.Hub {
	return s.hub
}

// HasSubscribers reports whether any channel of the store has a subscriber.
func (s *Store) HasSubscribers() bool {
	return s.Portfolio.Len() > 0 || s.Favourites.Len() > 0 ||
		s.UserSales.Len() > 0 || s.BuyMarket.Len() > 0 ||
		s.BiasIdolListings.Len() > 0 || s.BiasGroupListings.Len() > 0 ||
		s.Albums.Len() > 0 || s.FavIdol.Len() > 0 ||
		s.FavGroup.Len() > 0 || s.ExternalProfile.Len() > 0
}

func clonePhotocards(in []entity.Photocard) []entity.Photocard {
	out := make([]entity.Photocard, len(in))
	copy(out, in)
	return out
}

func cloneListings(in []entity.SaleListing) []entity.SaleListing {
	out := make([]entity.SaleListing, len(in))
	copy(out, in)
	return out
}

func favouritesOf(cards []entity.Photocard) []entity.Photocard {
	out := make([]entity.Photocard, 0, len(cards))
	for _, p := range cards {
		if p.Favourite {
			out = append(out, p)
		}
	}
	return out
}

func indexOfCard(cards []entity.Photocard, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfListing(listings []entity.SaleListing, id string) int {
	for i := range listings {
		if listings[i].ID() == id {
			return i
		}
	}
	return -1
}

func removeListing(listings []entity.SaleListing, id string) ([]entity.SaleListing, bool) {
	i := indexOfListing(listings, id)
	if i < 0 {
		return listings, false
	}
	return append(listings[:i:i], listings[i+1:]...), true
}

// Snapshots

func (s *Store) PortfolioSnapshot() []entity.Photocard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePhotocards(s.portfolio)
}

func (s *Store) FavouritesSnapshot() []entity.Photocard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return favouritesOf(s.portfolio)
}

func (s *Store) UserSalesSnapshot() []entity.SaleListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneListings(s.userSales)
}

func (s *Store) BuyMarketSnapshot() []entity.SaleListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneListings(s.buyMarket)
}

func (s *Store) BiasIdolSnapshot() []entity.SaleListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneListings(s.biasIdol)
}

func (s *Store) BiasGroupSnapshot() []entity.SaleListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneListings(s.biasGroup)
}

func (s *Store) AlbumsSnapshot() []entity.Album {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Album, len(s.albums))
	copy(out, s.albums)
	return out
}

func (s *Store) FavIdolSnapshot() *entity.Idol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.favIdol == nil {
		return nil
	}
	idol := *s.favIdol
	return &idol
}

func (s *Store) FavGroupSnapshot() *entity.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.favGroup == nil {
		return nil
	}
	group := *s.favGroup
	return &group
}

func (s *Store) ExternalProfileSnapshot() *entity.ExternalProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.external == nil {
		return nil
	}
	p := *s.external
	p.Favourites = clonePhotocards(s.external.Favourites)
	return &p
}

// Location is the device coordinate the session last reported, or nil.
func (s *Store) Location() *entity.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return nil
	}
	c := *s.location
	return &c
}

func (s *Store) SetLocation(c *entity.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.location = nil
		return
	}
	cp := *c
	s.location = &cp
}

// Portfolio

func (s *Store) notifyPortfolio(cards []entity.Photocard) {
	s.Portfolio.Notify(listener.ChangeUpdate, cards)
	s.Favourites.Notify(listener.ChangeUpdate, favouritesOf(cards))
}

func (s *Store) SetPortfolio(cards []entity.Photocard) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	s.portfolio = clonePhotocards(cards)
	snap := clonePhotocards(s.portfolio)
	s.mu.Unlock()

	s.notifyPortfolio(snap)
}

// AppendPortfolio adds p, replacing a card with the same id.
func (s *Store) AppendPortfolio(p entity.Photocard) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	if i := indexOfCard(s.portfolio, p.ID); i >= 0 {
		s.portfolio[i] = p
	} else {
		s.portfolio = append(s.portfolio, p)
	}
	snap := clonePhotocards(s.portfolio)
	s.mu.Unlock()

	s.notifyPortfolio(snap)
}

func (s *Store) RemovePortfolio(id string) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	i := indexOfCard(s.portfolio, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.portfolio = append(s.portfolio[:i:i], s.portfolio[i+1:]...)
	snap := clonePhotocards(s.portfolio)
	s.mu.Unlock()

	s.notifyPortfolio(snap)
	return true
}

// UpdatePortfolio applies fn to the card with the given id, if present.
func (s *Store) UpdatePortfolio(id string, fn func(p *entity.Photocard)) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	i := indexOfCard(s.portfolio, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	fn(&s.portfolio[i])
	snap := clonePhotocards(s.portfolio)
	s.mu.Unlock()

	s.notifyPortfolio(snap)
	return true
}

func (s *Store) PortfolioCard(id string) (entity.Photocard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOfCard(s.portfolio, id); i >= 0 {
		return s.portfolio[i], true
	}
	return entity.Photocard{}, false
}

// User sales

func (s *Store) SetUserSales(listings []entity.SaleListing) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	s.userSales = cloneListings(listings)
	snap := cloneListings(s.userSales)
	s.mu.Unlock()

	s.UserSales.Notify(listener.ChangeUpdate, snap)
}

// UpsertUserSale replaces the listing of the same photocard or appends l.
func (s *Store) UpsertUserSale(l entity.SaleListing) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	if i := indexOfListing(s.userSales, l.ID()); i >= 0 {
		s.userSales[i] = l
	} else {
		s.userSales = append(s.userSales, l)
	}
	snap := cloneListings(s.userSales)
	s.mu.Unlock()

	s.UserSales.Notify(listener.ChangeUpdate, snap)
}

func (s *Store) UpdateUserSale(id string, fn func(l *entity.SaleListing)) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	i := indexOfListing(s.userSales, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	fn(&s.userSales[i])
	snap := cloneListings(s.userSales)
	s.mu.Unlock()

	s.UserSales.Notify(listener.ChangeUpdate, snap)
	return true
}

// Buy market

// ResetBuyMarket empties the buy market and starts a new generation. Appends
// tagged with an older generation are dropped.
func (s *Store) ResetBuyMarket() uint64 {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	s.marketGen++
	gen := s.marketGen
	s.buyMarket = nil
	s.mu.Unlock()

	s.BuyMarket.Notify(listener.ChangeUpdate, []entity.SaleListing{})
	return gen
}

func (s *Store) AppendBuyMarket(gen uint64, l entity.SaleListing) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	if gen != s.marketGen {
		s.mu.Unlock()
		return false
	}
	if i := indexOfListing(s.buyMarket, l.ID()); i >= 0 {
		s.buyMarket[i] = l
	} else {
		s.buyMarket = append(s.buyMarket, l)
	}
	snap := cloneListings(s.buyMarket)
	s.mu.Unlock()

	s.BuyMarket.Notify(listener.ChangeUpdate, snap)
	return true
}

// SetBuyMarketImage attaches image to a listing that is still in the buy
// market. A listing removed in the meantime is left alone.
func (s *Store) SetBuyMarketImage(id string, image []byte) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	i := indexOfListing(s.buyMarket, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.buyMarket[i].Photocard.Image = image
	snap := cloneListings(s.buyMarket)
	s.mu.Unlock()

	s.BuyMarket.Notify(listener.ChangeUpdate, snap)
	return true
}

// ReorderBuyMarket replaces the buy market order with sorted. Listings that
// were removed since sorted was computed stay removed; listings added since
// keep their place after the sorted ones.
func (s *Store) ReorderBuyMarket(sorted []entity.SaleListing) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	current := make(map[string]entity.SaleListing, len(s.buyMarket))
	for _, l := range s.buyMarket {
		current[l.ID()] = l
	}
	next := make([]entity.SaleListing, 0, len(s.buyMarket))
	placed := make(map[string]bool, len(sorted))
	for _, l := range sorted {
		if cur, ok := current[l.ID()]; ok && !placed[l.ID()] {
			next = append(next, cur)
			placed[l.ID()] = true
		}
	}
	for _, l := range s.buyMarket {
		if !placed[l.ID()] {
			next = append(next, l)
		}
	}
	s.buyMarket = next
	snap := cloneListings(next)
	s.mu.Unlock()

	s.BuyMarket.Notify(listener.ChangeUpdate, snap)
}

// RemoveListing drops the listing of photocard id from every listing
// collection and notifies the ones that held it.
func (s *Store) RemoveListing(id string) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	var removedMarket, removedSales, removedIdol, removedGroup bool
	s.buyMarket, removedMarket = removeListing(s.buyMarket, id)
	s.userSales, removedSales = removeListing(s.userSales, id)
	s.biasIdol, removedIdol = removeListing(s.biasIdol, id)
	s.biasGroup, removedGroup = removeListing(s.biasGroup, id)
	market, sales := cloneListings(s.buyMarket), cloneListings(s.userSales)
	idol, group := cloneListings(s.biasIdol), cloneListings(s.biasGroup)
	s.mu.Unlock()

	if removedMarket {
		s.BuyMarket.Notify(listener.ChangeUpdate, market)
	}
	if removedSales {
		s.UserSales.Notify(listener.ChangeUpdate, sales)
	}
	if removedIdol {
		s.BiasIdolListings.Notify(listener.ChangeUpdate, idol)
	}
	if removedGroup {
		s.BiasGroupListings.Notify(listener.ChangeUpdate, group)
	}
	return removedMarket || removedSales || removedIdol || removedGroup
}

// Featured listings

type featuredSet int

const (
	featuredIdol featuredSet = iota
	featuredGroup
)

func (s *Store) featured(set featuredSet) (*[]entity.SaleListing, *listener.Channel[[]entity.SaleListing]) {
	if set == featuredGroup {
		return &s.biasGroup, s.BiasGroupListings
	}
	return &s.biasIdol, s.BiasIdolListings
}

func (s *Store) ResetFeatured() {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	s.biasIdol, s.biasGroup = nil, nil
	s.mu.Unlock()

	s.BiasIdolListings.Notify(listener.ChangeUpdate, []entity.SaleListing{})
	s.BiasGroupListings.Notify(listener.ChangeUpdate, []entity.SaleListing{})
}

// admitFeatured appends l while the set holds fewer than capacity listings.
// Once full, l is appended only when coin reports true, and then evict picks
// the index of one member (the new one included) to drop.
func (s *Store) admitFeatured(set featuredSet, l entity.SaleListing, capacity int, coin func() bool, evict func(n int) int) bool {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	list, ch := s.featured(set)
	if indexOfListing(*list, l.ID()) >= 0 {
		s.mu.Unlock()
		return false
	}
	if len(*list) < capacity {
		*list = append(*list, l)
	} else {
		if !coin() {
			s.mu.Unlock()
			return false
		}
		*list = append(*list, l)
		if len(*list) > 1 {
			i := evict(len(*list))
			*list = append((*list)[:i:i], (*list)[i+1:]...)
		}
	}
	snap := cloneListings(*list)
	s.mu.Unlock()

	ch.Notify(listener.ChangeUpdate, snap)
	return true
}

func (s *Store) setFeaturedImage(id string, image []byte) {
	s.seq.Lock()
	defer s.seq.Unlock()

	for _, set := range []featuredSet{featuredIdol, featuredGroup} {
		s.mu.Lock()
		list, ch := s.featured(set)
		i := indexOfListing(*list, id)
		if i < 0 {
			s.mu.Unlock()
			continue
		}
		(*list)[i].Photocard.Image = image
		snap := cloneListings(*list)
		s.mu.Unlock()

		ch.Notify(listener.ChangeUpdate, snap)
	}
}

// Profile and catalog

func (s *Store) SetFavIdol(idol *entity.Idol) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	var snap *entity.Idol
	if idol != nil {
		cp := *idol
		s.favIdol = &cp
		snapCopy := cp
		snap = &snapCopy
	} else {
		s.favIdol = nil
	}
	s.mu.Unlock()

	s.FavIdol.Notify(listener.ChangeUpdate, snap)
}

func (s *Store) SetFavGroup(group *entity.Group) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	var snap *entity.Group
	if group != nil {
		cp := *group
		s.favGroup = &cp
		snapCopy := cp
		snap = &snapCopy
	} else {
		s.favGroup = nil
	}
	s.mu.Unlock()

	s.FavGroup.Notify(listener.ChangeUpdate, snap)
}

func (s *Store) SetAlbums(albums []entity.Album) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	s.albums = make([]entity.Album, len(albums))
	copy(s.albums, albums)
	snap := make([]entity.Album, len(albums))
	copy(snap, albums)
	s.mu.Unlock()

	s.Albums.Notify(listener.ChangeUpdate, snap)
}

func (s *Store) SetExternalProfile(p entity.ExternalProfile) {
	s.seq.Lock()
	defer s.seq.Unlock()

	s.mu.Lock()
	stored := p
	stored.Favourites = clonePhotocards(p.Favourites)
	s.external = &stored
	snap := stored
	snap.Favourites = clonePhotocards(stored.Favourites)
	s.mu.Unlock()

	s.ExternalProfile.Notify(listener.ChangeUpdate, &snap)
}
