package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
)

type photocardRepository struct {
	client *firestore.Client
}

func NewPhotocardRepository(client *firestore.Client) repository.PhotocardRepository {
	return &photocardRepository{client: client}
}

func (r *photocardRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(photocardCollection).Doc(id)
}

func (r *photocardRepository) Create(ctx context.Context, p entity.Photocard) error {
	if _, err := r.doc(p.ID).Create(ctx, photocardDocFrom(p)); err != nil {
		if isAlreadyExists(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create photocard %s: %w", p.ID, err)
	}
	return nil
}

func (r *photocardRepository) GetByID(ctx context.Context, id string) (*entity.Photocard, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photocard by ID %s: %w", id, err)
	}
	var doc photocardDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode photocard %s: %w", id, err)
	}
	p := doc.toEntity(snap.Ref.ID)
	return &p, nil
}

func (r *photocardRepository) TransferOwnership(ctx context.Context, id string, owner entity.Owner) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "user", Value: owner.Email},
		{Path: "user_uid", Value: owner.UID},
		{Path: "user_display_name", Value: owner.DisplayName},
		{Path: "favourite", Value: false},
	})
}

func (r *photocardRepository) SetFavourite(ctx context.Context, id string, favourite bool) error {
	return r.update(ctx, id, []firestore.Update{{Path: "favourite", Value: favourite}})
}

// update fails with NotFound on a missing document, unlike Set with MergeAll.
func (r *photocardRepository) update(ctx context.Context, id string, updates []firestore.Update) error {
	if _, err := r.doc(id).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update photocard %s: %w", id, err)
	}
	return nil
}

func (r *photocardRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to delete photocard %s: %w", id, err)
	}
	return nil
}
