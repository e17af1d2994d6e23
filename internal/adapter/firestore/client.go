package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	marketCollection    = "market"
	photocardCollection = "photocards"
	userCollection      = "users"
	userPhotocardsSub   = "photocards"
	userOnSaleSub       = "photocards_on_sale"
	groupCollection     = "groups"
	idolSub             = "idols"
	albumSub            = "albums"
	albumPhotocardsSub  = "photocards"
)

// NewClient uses Application Default Credentials when no credentials file is configured.
func NewClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: firestore client: %w", repository.ErrConnectionFailed, err)
	}
	return client, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
