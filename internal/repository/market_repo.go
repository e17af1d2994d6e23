package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

// MarketQuery is a conjunctive range query. Dates are compared as persisted
// timestamp strings.
type MarketQuery struct {
	PriceLo     int
	PriceHi     int
	ConditionLo int
	ConditionHi int
	DateLo      string
	DateHi      string
}

func MarketQueryFromFilter(f entity.Filter) MarketQuery {
	return MarketQuery{
		PriceLo:     f.PriceLo,
		PriceHi:     f.PriceHi,
		ConditionLo: int(f.ConditionLo),
		ConditionHi: int(f.ConditionHi),
		DateLo:      entity.FormatTimestamp(f.DateLo),
		DateHi:      entity.FormatTimestamp(f.DateHi),
	}
}

type MarketRepository interface {
	Query(ctx context.Context, q MarketQuery) ([]entity.MarketEntry, error)
	ListAll(ctx context.Context) ([]entity.MarketEntry, error)
	Get(ctx context.Context, photocardID string) (*entity.MarketEntry, error)
	// Put stores the entry under its photocard id, replacing any previous listing.
	Put(ctx context.Context, entry entity.MarketEntry) error
	// Delete reports whether a document was actually removed.
	Delete(ctx context.Context, photocardID string) (bool, error)
}
