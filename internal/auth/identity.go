package auth

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified caller of a request.
type Identity struct {
	UID   string
	Email string
	Name  string
}

func (i Identity) Owner() entity.Owner {
	return entity.Owner{UID: i.UID, Email: i.Email, DisplayName: i.Name}
}

type ctxKey string

const identityCtxKey = ctxKey("identity")

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	if !ok || id.UID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// TokenVerifier turns a bearer token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
