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

type userRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) repository.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) user(uid string) *firestore.DocumentRef {
	return r.client.Collection(userCollection).Doc(uid)
}

func (r *userRepository) GetProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	snap, err := r.user(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", uid, err)
	}

	profile := &entity.Profile{UID: doc.UID, Email: doc.Email, Name: doc.Name}
	if profile.UID == "" {
		profile.UID = snap.Ref.ID
	}
	if doc.FavGroupRef != nil {
		name, err := readName(ctx, doc.FavGroupRef)
		if err != nil {
			return nil, err
		}
		profile.FavGroup = &entity.Group{UID: doc.FavGroupRef.ID, Name: name}
	}
	// groups/{g}/idols/{i}: the group is the parent of the idols collection.
	if doc.FavIdolRef != nil && doc.FavIdolRef.Parent != nil && doc.FavIdolRef.Parent.Parent != nil {
		groupRef := doc.FavIdolRef.Parent.Parent
		groupName, err := readName(ctx, groupRef)
		if err != nil {
			return nil, err
		}
		idolName, err := readName(ctx, doc.FavIdolRef)
		if err != nil {
			return nil, err
		}
		profile.FavIdol = &entity.Idol{
			UID:   doc.FavIdolRef.ID,
			Name:  idolName,
			Group: entity.Group{UID: groupRef.ID, Name: groupName},
		}
	}
	return profile, nil
}

// readName falls back to the document id when the catalog node is missing.
func readName(ctx context.Context, ref *firestore.DocumentRef) (string, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return ref.ID, nil
		}
		return "", fmt.Errorf("failed to read %s: %w", ref.Path, err)
	}
	var doc nameDoc
	if err := snap.DataTo(&doc); err != nil || doc.Name == "" {
		return ref.ID, nil
	}
	return doc.Name, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, profile entity.Profile) error {
	_, err := r.user(profile.UID).Set(ctx, map[string]interface{}{
		"uid":   profile.UID,
		"email": profile.Email,
		"name":  profile.Name,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", profile.UID, err)
	}
	return nil
}

func (r *userRepository) SetFavGroup(ctx context.Context, uid string, group *entity.Group) error {
	var value interface{} = firestore.Delete
	if group != nil {
		value = r.client.Collection(groupCollection).Doc(group.UID)
	}
	return r.updateUser(ctx, uid, "fav_group_ref", value)
}

func (r *userRepository) SetFavIdol(ctx context.Context, uid string, idol *entity.Idol) error {
	var value interface{} = firestore.Delete
	if idol != nil {
		value = r.client.Collection(groupCollection).Doc(idol.Group.UID).Collection(idolSub).Doc(idol.UID)
	}
	return r.updateUser(ctx, uid, "fav_idol_ref", value)
}

func (r *userRepository) updateUser(ctx context.Context, uid, field string, value interface{}) error {
	if _, err := r.user(uid).Update(ctx, []firestore.Update{{Path: field, Value: value}}); err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update %s of user %s: %w", field, uid, err)
	}
	return nil
}

func (r *userRepository) AddOwned(ctx context.Context, uid, photocardID string) error {
	ref := r.client.Collection(photocardCollection).Doc(photocardID)
	_, err := r.user(uid).Collection(userPhotocardsSub).Doc(photocardID).Set(ctx, map[string]interface{}{
		"photocard_ref": ref,
	})
	if err != nil {
		return fmt.Errorf("failed to index photocard %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) RemoveOwned(ctx context.Context, uid, photocardID string) error {
	if _, err := r.user(uid).Collection(userPhotocardsSub).Doc(photocardID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to unindex photocard %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) ListOwned(ctx context.Context, uid string) ([]string, error) {
	return r.listRefs(ctx, r.user(uid).Collection(userPhotocardsSub), "photocard_ref")
}

func (r *userRepository) AddOnSale(ctx context.Context, uid, photocardID string) error {
	ref := r.client.Collection(marketCollection).Doc(photocardID)
	_, err := r.user(uid).Collection(userOnSaleSub).Doc(photocardID).Set(ctx, map[string]interface{}{
		"sale_listing_ref": ref,
	})
	if err != nil {
		return fmt.Errorf("failed to index listing %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) RemoveOnSale(ctx context.Context, uid, photocardID string) error {
	if _, err := r.user(uid).Collection(userOnSaleSub).Doc(photocardID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to unindex listing %s for user %s: %w", photocardID, uid, err)
	}
	return nil
}

func (r *userRepository) ListOnSale(ctx context.Context, uid string) ([]string, error) {
	return r.listRefs(ctx, r.user(uid).Collection(userOnSaleSub), "sale_listing_ref")
}

func (r *userRepository) listRefs(ctx context.Context, col *firestore.CollectionRef, field string) ([]string, error) {
	it := col.Documents(ctx)
	defer it.Stop()

	var ids []string
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", col.Path, err)
		}
		id := snap.Ref.ID
		if ref, ok := snap.Data()[field].(*firestore.DocumentRef); ok && ref != nil {
			id = ref.ID
		}
		ids = append(ids, id)
	}
	return ids, nil
}
