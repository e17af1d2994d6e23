package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

type ListingHandler struct {
	listings service.ListingService
	logger   *zap.Logger
}

func NewListingHandler(listings service.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger}
}

type addListingRequest struct {
	PhotocardID string           `json:"photocard_id"`
	Price       int              `json:"price"`
	Location    entity.Location  `json:"location"`
	Condition   entity.Condition `json:"condition"`
}

func (h *ListingHandler) AddSaleListing(w http.ResponseWriter, r *http.Request) {
	var req addListingRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	listing, err := h.listings.AddSaleListing(r.Context(), sessionFrom(r), service.SaleListingParams{
		PhotocardID: req.PhotocardID,
		Price:       req.Price,
		Location:    req.Location,
		Condition:   req.Condition,
	})
	if err != nil {
		writeError(w, h.logger, "Failed to add sale listing", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, listing)
}

func (h *ListingHandler) DeleteSaleListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.listings.DeleteSaleListing(r.Context(), sessionFrom(r), id); err != nil {
		writeError(w, h.logger, "Failed to delete sale listing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	card, err := h.listings.Purchase(r.Context(), sessionFrom(r), id)
	if err != nil {
		writeError(w, h.logger, "Failed to purchase photocard", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, card)
}

func (h *ListingHandler) MySales(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := h.listings.LoadUserSales(r.Context(), s); err != nil {
		writeError(w, h.logger, "Failed to load sale listings", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Store.UserSalesSnapshot())
}
