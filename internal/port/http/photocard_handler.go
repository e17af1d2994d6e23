package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

const imageField = "image"

type PhotocardHandler struct {
	photocards     service.PhotocardService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewPhotocardHandler(photocards service.PhotocardService, maxUploadBytes int64, logger *zap.Logger) *PhotocardHandler {
	return &PhotocardHandler{photocards: photocards, maxUploadBytes: maxUploadBytes, logger: logger}
}

func (h *PhotocardHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := h.photocards.LoadPortfolio(r.Context(), s); err != nil {
		writeError(w, h.logger, "Failed to load portfolio", err)
		return
	}
	h.writeSearched(w, r, s.Store.PortfolioSnapshot())
}

func (h *PhotocardHandler) Favourites(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := h.photocards.LoadFavourites(r.Context(), s); err != nil {
		writeError(w, h.logger, "Failed to load favourites", err)
		return
	}
	h.writeSearched(w, r, s.Store.FavouritesSnapshot())
}

func (h *PhotocardHandler) writeSearched(w http.ResponseWriter, r *http.Request, cards []entity.Photocard) {
	scope, err := entity.ParseSearchScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, h.logger, "Invalid search scope", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, service.Search(cards, scope, r.URL.Query().Get("q")))
}

// readImage pulls the image part out of a multipart body of at most
// maxUploadBytes plus room for the text fields.
func (h *PhotocardHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	file, _, err := r.FormFile(imageField)
	if err == http.ErrMissingFile {
		return nil, service.ErrImageRequired
	}
	if err != nil {
		return nil, fmt.Errorf("read image part: %w", err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (h *PhotocardHandler) AddPhotocard(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(w, r)
	if err != nil {
		h.rejectUpload(w, err)
		return
	}
	card, err := h.photocards.AddPhotocard(r.Context(), sessionFrom(r), service.NewPhotocardParams{
		Group: r.FormValue("group"),
		Idol:  r.FormValue("idol"),
		Album: r.FormValue("album"),
		Image: image,
	})
	if err != nil {
		writeError(w, h.logger, "Failed to add photocard", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, card)
}

func (h *PhotocardHandler) rejectUpload(w http.ResponseWriter, err error) {
	if status := statusFor(err); status != http.StatusInternalServerError {
		writeError(w, h.logger, "Invalid upload", err)
		return
	}
	h.logger.Debug("Malformed upload", zap.Error(err))
	http.Error(w, "Invalid multipart body", http.StatusBadRequest)
}

func (h *PhotocardHandler) DeletePhotocard(w http.ResponseWriter, r *http.Request) {
	if err := h.photocards.DeletePhotocard(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, "Failed to delete photocard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type favouriteRequest struct {
	Favourite bool `json:"favourite"`
}

func (h *PhotocardHandler) ChangeFavourite(w http.ResponseWriter, r *http.Request) {
	var req favouriteRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.photocards.ChangeFavourite(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.Favourite); err != nil {
		writeError(w, h.logger, "Failed to change favourite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotocardHandler) ChangeImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(w, r)
	if err != nil {
		h.rejectUpload(w, err)
		return
	}
	if err := h.photocards.ChangePhotocardImage(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), image); err != nil {
		writeError(w, h.logger, "Failed to change photocard image", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
