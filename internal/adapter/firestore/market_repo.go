package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"google.golang.org/api/iterator"
)

type marketRepository struct {
	client *firestore.Client
}

func NewMarketRepository(client *firestore.Client) repository.MarketRepository {
	return &marketRepository{client: client}
}

func (r *marketRepository) col() *firestore.CollectionRef {
	return r.client.Collection(marketCollection)
}

func (r *marketRepository) Query(ctx context.Context, q repository.MarketQuery) ([]entity.MarketEntry, error) {
	query := r.col().
		Where("price", ">=", q.PriceLo).
		Where("price", "<=", q.PriceHi).
		Where("condition", ">=", q.ConditionLo).
		Where("condition", "<=", q.ConditionHi).
		Where("date", ">=", q.DateLo).
		Where("date", "<=", q.DateHi)
	return r.collect(ctx, query.Documents(ctx))
}

func (r *marketRepository) ListAll(ctx context.Context) ([]entity.MarketEntry, error) {
	return r.collect(ctx, r.col().Documents(ctx))
}

func (r *marketRepository) collect(ctx context.Context, it *firestore.DocumentIterator) ([]entity.MarketEntry, error) {
	defer it.Stop()
	var entries []entity.MarketEntry
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query market: %w", err)
		}
		var doc marketDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		entry, err := doc.toEntry(snap.Ref.ID)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *marketRepository) Get(ctx context.Context, photocardID string) (*entity.MarketEntry, error) {
	snap, err := r.col().Doc(photocardID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get market entry %s: %w", photocardID, err)
	}
	var doc marketDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode market entry %s: %w", photocardID, err)
	}
	entry, err := doc.toEntry(snap.Ref.ID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *marketRepository) Put(ctx context.Context, e entity.MarketEntry) error {
	doc := marketDoc{
		PhotocardRef: r.client.Collection(photocardCollection).Doc(e.PhotocardID),
		Price:        e.Price,
		Location:     e.Location.Title,
		LocationLat:  e.Location.Latitude,
		LocationLong: e.Location.Longitude,
		Condition:    int(e.Condition),
		Date:         entity.FormatTimestamp(e.ListedAt),
	}
	if _, err := r.col().Doc(e.PhotocardID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to put market entry %s: %w", e.PhotocardID, err)
	}
	return nil
}

// Delete runs in a transaction so that of two concurrent deletions exactly
// one observes the document.
func (r *marketRepository) Delete(ctx context.Context, photocardID string) (bool, error) {
	ref := r.col().Doc(photocardID)
	deleted := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		deleted = false
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		deleted = true
		return tx.Delete(ref)
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete market entry %s: %w", photocardID, err)
	}
	return deleted, nil
}
