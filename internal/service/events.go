package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

type EventType string

const (
	EventListingCreated   EventType = "market.listing.created"
	EventListingDeleted   EventType = "market.listing.deleted"
	EventListingPurchased EventType = "market.listing.purchased"
	EventPhotocardCreated EventType = "photocard.created"
	EventPhotocardDeleted EventType = "photocard.deleted"
)

// MarketEvent is published after every market or photocard mutation so other
// instances can update the sessions they hold.
type MarketEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Origin      string    `json:"origin"`
	PhotocardID string    `json:"photocard_id"`
	SellerUID   string    `json:"seller_uid,omitempty"`
	BuyerUID    string    `json:"buyer_uid,omitempty"`
	Price       int       `json:"price,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, message interface{}) error
}

type eventEmitter struct {
	publisher EventPublisher
	origin    string
	log       logger.Logger
}

func newEventEmitter(publisher EventPublisher, origin string, log logger.Logger) *eventEmitter {
	return &eventEmitter{publisher: publisher, origin: origin, log: log}
}

func (e *eventEmitter) emit(ctx context.Context, ev MarketEvent) {
	if e == nil || e.publisher == nil {
		return
	}
	ev.ID = ulid.Make().String()
	ev.Origin = e.origin
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	// The mutation is already committed; a client hanging up must not drop its event.
	if err := e.publisher.Publish(context.WithoutCancel(ctx), string(ev.Type), ev); err != nil {
		e.log.Warnf("Failed to publish %s event for photocard %s: %v", ev.Type, ev.PhotocardID, err)
	}
}

// PortfolioCardLoader resolves a photocard for a portfolio that gained it.
type PortfolioCardLoader interface {
	LoadPortfolioCard(ctx context.Context, s *Session, photocardID string) error
}

// EventApplier applies events published by other instances to the sessions
// of this one.
type EventApplier struct {
	origin   string
	sessions *SessionManager
	loader   PortfolioCardLoader
	log      logger.Logger
}

func NewEventApplier(origin string, sessions *SessionManager, loader PortfolioCardLoader, log logger.Logger) *EventApplier {
	return &EventApplier{origin: origin, sessions: sessions, loader: loader, log: log}
}

// HandleRemote decodes one event and applies it unless this instance
// published it.
func (a *EventApplier) HandleRemote(ctx context.Context, subject string, data []byte) error {
	var ev MarketEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode event on %s: %w", subject, err)
	}
	if ev.Origin == a.origin {
		return nil
	}
	return a.Apply(ctx, ev)
}

func (a *EventApplier) Apply(ctx context.Context, ev MarketEvent) error {
	switch ev.Type {
	case EventListingDeleted:
		a.sessions.RetireListing(ev.PhotocardID)
	case EventListingPurchased:
		a.sessions.RetireListing(ev.PhotocardID)
		a.sessions.RemovePhotocard(ev.SellerUID, ev.PhotocardID)
		if s, ok := a.sessions.Lookup(ev.BuyerUID); ok && a.loader != nil {
			if err := a.loader.LoadPortfolioCard(ctx, s, ev.PhotocardID); err != nil {
				return fmt.Errorf("append purchased photocard %s for %s: %w", ev.PhotocardID, ev.BuyerUID, err)
			}
		}
	case EventPhotocardDeleted:
		a.sessions.RetireListing(ev.PhotocardID)
		a.sessions.RemovePhotocard(ev.SellerUID, ev.PhotocardID)
	case EventListingCreated, EventPhotocardCreated:
		// Buy markets pick new listings up on their next filter.
	default:
		a.log.Warnf("Ignoring event %s of unknown type %q", ev.ID, ev.Type)
	}
	return nil
}
