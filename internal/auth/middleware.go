package auth

import (
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

// accessTokenParam carries the token on websocket upgrades, where browsers
// cannot set an Authorization header.
const accessTokenParam = "access_token"

func Middleware(verifier TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
				return
			}
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debugf("auth: rejected token on %s: %v", r.URL.Path, err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return strings.TrimSpace(r.URL.Query().Get(accessTokenParam))
}
