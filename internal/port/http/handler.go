package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

type sessionKey struct{}

// Sessions binds the authenticated identity to its live session.
func Sessions(sessions *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.FromContext(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			s := sessions.Get(id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

func sessionFrom(r *http.Request) *service.Session {
	s, _ := r.Context().Value(sessionKey{}).(*service.Session)
	return s
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to encode response", zap.Error(err))
	}
}
