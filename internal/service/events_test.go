package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

func encodeEvent(t *testing.T, ev MarketEvent) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}

func TestEventApplier_HandleRemote_IgnoresOwnEvents(t *testing.T) {
	f := newFixture(t)
	s := f.session("viewer")
	gen := s.Store.ResetBuyMarket()
	s.Store.AppendBuyMarket(gen, testListing("p1", "seller", 10))
	applier := NewEventApplier("instance-a", f.sessions, f.cards, logger.NewNop())

	data := encodeEvent(t, MarketEvent{Type: EventListingDeleted, Origin: "instance-a", PhotocardID: "p1"})

	require.NoError(t, applier.HandleRemote(context.Background(), "photocard.market.listing.deleted", data))
	assert.Len(t, s.Store.BuyMarketSnapshot(), 1)
}

func TestEventApplier_HandleRemote_ListingDeleted(t *testing.T) {
	f := newFixture(t)
	s := f.session("viewer")
	gen := s.Store.ResetBuyMarket()
	s.Store.AppendBuyMarket(gen, testListing("p1", "seller", 10))
	applier := NewEventApplier("instance-a", f.sessions, f.cards, logger.NewNop())

	data := encodeEvent(t, MarketEvent{Type: EventListingDeleted, Origin: "instance-b", PhotocardID: "p1"})

	require.NoError(t, applier.HandleRemote(context.Background(), "photocard.market.listing.deleted", data))
	assert.Empty(t, s.Store.BuyMarketSnapshot())
}

func TestEventApplier_HandleRemote_PurchaseMovesCard(t *testing.T) {
	f := newFixture(t)
	seller := f.session("seller")
	buyer := f.session("buyer")
	seller.Store.SetPortfolio([]entity.Photocard{*testCard("p1", "seller", "BLACKPINK", "Jisoo")})
	f.photocards.On("GetByID", mock.Anything, "p1").Return(testCard("p1", "buyer", "BLACKPINK", "Jisoo"), nil)
	f.local.Write("p1", []byte("img"))
	applier := NewEventApplier("instance-a", f.sessions, f.cards, logger.NewNop())

	data := encodeEvent(t, MarketEvent{
		Type: EventListingPurchased, Origin: "instance-b", PhotocardID: "p1", SellerUID: "seller", BuyerUID: "buyer",
	})

	require.NoError(t, applier.HandleRemote(context.Background(), "photocard.market.listing.purchased", data))
	assert.Empty(t, seller.Store.PortfolioSnapshot())
	assert.Equal(t, []string{"p1"}, cardIDs(buyer.Store.PortfolioSnapshot()))
}

func TestEventApplier_HandleRemote_MalformedPayload(t *testing.T) {
	f := newFixture(t)
	applier := NewEventApplier("instance-a", f.sessions, f.cards, logger.NewNop())

	assert.Error(t, applier.HandleRemote(context.Background(), "photocard.market.listing.deleted", []byte("{")))
}

func TestEventEmitter_StampsEnvelope(t *testing.T) {
	pub := new(MockEventPublisher)
	pub.On("Publish", mock.Anything, string(EventListingCreated), mock.MatchedBy(func(ev MarketEvent) bool {
		return ev.ID != "" && ev.Origin == "instance-a" && !ev.OccurredAt.IsZero() && ev.PhotocardID == "p1"
	})).Return(nil).Once()

	newEventEmitter(pub, "instance-a", logger.NewNop()).emit(context.Background(), MarketEvent{Type: EventListingCreated, PhotocardID: "p1"})

	pub.AssertExpectations(t)
}

func TestEventEmitter_PublishesAfterCallerCancels(t *testing.T) {
	pub := new(MockEventPublisher)
	pub.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), string(EventListingDeleted), mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	newEventEmitter(pub, "instance-a", logger.NewNop()).emit(ctx, MarketEvent{Type: EventListingDeleted, PhotocardID: "p1"})

	pub.AssertExpectations(t)
}
