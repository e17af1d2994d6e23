package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

type PhotocardRepository interface {
	Create(ctx context.Context, p entity.Photocard) error
	GetByID(ctx context.Context, id string) (*entity.Photocard, error)
	// TransferOwnership merges only the ownership fields and clears the favourite flag.
	TransferOwnership(ctx context.Context, id string, owner entity.Owner) error
	SetFavourite(ctx context.Context, id string, favourite bool) error
	Delete(ctx context.Context, id string) error
}

// PhotocardCache is a read-through cache in front of PhotocardRepository.
type PhotocardCache interface {
	Get(ctx context.Context, id string) (*entity.Photocard, error)
	Set(ctx context.Context, p entity.Photocard, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
