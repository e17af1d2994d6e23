package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

type UserRepository interface {
	GetProfile(ctx context.Context, uid string) (*entity.Profile, error)
	UpsertProfile(ctx context.Context, profile entity.Profile) error
	SetFavGroup(ctx context.Context, uid string, group *entity.Group) error
	SetFavIdol(ctx context.Context, uid string, idol *entity.Idol) error

	AddOwned(ctx context.Context, uid, photocardID string) error
	RemoveOwned(ctx context.Context, uid, photocardID string) error
	ListOwned(ctx context.Context, uid string) ([]string, error)

	AddOnSale(ctx context.Context, uid, photocardID string) error
	RemoveOnSale(ctx context.Context, uid, photocardID string) error
	ListOnSale(ctx context.Context, uid string) ([]string, error)
}
