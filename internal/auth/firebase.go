package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase ID tokens, the identity the mobile app signs in with.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, cfg config.AuthConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp failed: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	uid := strings.TrimSpace(token.UID)
	if uid == "" {
		return Identity{}, fmt.Errorf("%w: invalid uid in token", ErrUnauthenticated)
	}
	return Identity{
		UID:   uid,
		Email: claimString(token.Claims, "email"),
		Name:  claimString(token.Claims, "name"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if raw, ok := claims[key]; ok {
		if s, ok := raw.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
