package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

type ProfileHandler struct {
	profiles service.ProfileService
	logger   *zap.Logger
}

func NewProfileHandler(profiles service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// GetProfile creates the profile on first sign-in before loading it.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if _, err := h.profiles.EnsureProfile(r.Context(), s); err != nil {
		writeError(w, h.logger, "Failed to ensure profile", err)
		return
	}
	profile, err := h.profiles.LoadProfile(r.Context(), s)
	if err != nil {
		writeError(w, h.logger, "Failed to load profile", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile)
}

func (h *ProfileHandler) ExternalProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.LoadExternalProfile(r.Context(), sessionFrom(r), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, h.logger, "Failed to load user profile", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile)
}

// searchScope reads the scope query parameter, defaulting to fallback.
func searchScope(r *http.Request, fallback entity.SearchScope) (entity.SearchScope, error) {
	raw := r.URL.Query().Get("scope")
	if raw == "" {
		return fallback, nil
	}
	return entity.ParseSearchScope(raw)
}

func (h *ProfileHandler) Albums(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope, err := searchScope(r, entity.ScopeAlbum)
	if err != nil {
		writeError(w, h.logger, "Invalid search scope", err)
		return
	}
	albums, err := h.profiles.LoadAlbums(r.Context(), sessionFrom(r), q.Get("group"), q.Get("idol"))
	if err != nil {
		writeError(w, h.logger, "Failed to load albums", err)
		return
	}
	albums = service.Search(albums, scope, q.Get("q"))
	if albums == nil {
		albums = []entity.Album{}
	}
	writeJSON(w, h.logger, http.StatusOK, albums)
}

func (h *ProfileHandler) Groups(w http.ResponseWriter, r *http.Request) {
	scope, err := searchScope(r, entity.ScopeGroup)
	if err != nil {
		writeError(w, h.logger, "Invalid search scope", err)
		return
	}
	groups, err := h.profiles.ListGroups(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to list groups", err)
		return
	}
	groups = service.Search(groups, scope, r.URL.Query().Get("q"))
	if groups == nil {
		groups = []entity.Group{}
	}
	writeJSON(w, h.logger, http.StatusOK, groups)
}

func (h *ProfileHandler) Idols(w http.ResponseWriter, r *http.Request) {
	scope, err := searchScope(r, entity.ScopeIdol)
	if err != nil {
		writeError(w, h.logger, "Invalid search scope", err)
		return
	}
	idols, err := h.profiles.ListIdols(r.Context(), chi.URLParam(r, "group"))
	if err != nil {
		writeError(w, h.logger, "Failed to list idols", err)
		return
	}
	idols = service.Search(idols, scope, r.URL.Query().Get("q"))
	if idols == nil {
		idols = []entity.Idol{}
	}
	writeJSON(w, h.logger, http.StatusOK, idols)
}

type biasRequest struct {
	Group string `json:"group"`
	Idol  string `json:"idol"`
}

func (h *ProfileHandler) SetFavGroup(w http.ResponseWriter, r *http.Request) {
	var req biasRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	group, err := h.profiles.SetFavGroup(r.Context(), sessionFrom(r), req.Group)
	if err != nil {
		writeError(w, h.logger, "Failed to set favourite group", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, group)
}

func (h *ProfileHandler) SetFavIdol(w http.ResponseWriter, r *http.Request) {
	var req biasRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	idol, err := h.profiles.SetFavIdol(r.Context(), sessionFrom(r), req.Group, req.Idol)
	if err != nil {
		writeError(w, h.logger, "Failed to set favourite idol", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, idol)
}

func (h *ProfileHandler) ClearFavGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.ClearBiasGroup(r.Context(), sessionFrom(r)); err != nil {
		writeError(w, h.logger, "Failed to clear favourite group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) ClearFavIdol(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.ClearBiasIdol(r.Context(), sessionFrom(r)); err != nil {
		writeError(w, h.logger, "Failed to clear favourite idol", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
