package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

type MarketHandler struct {
	market   service.MarketService
	featured service.FeaturedService
	logger   *zap.Logger
}

func NewMarketHandler(market service.MarketService, featured service.FeaturedService, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{market: market, featured: featured, logger: logger}
}

// ApplyFilter decodes the filter over the defaults, so omitted bounds stay open.
func (h *MarketHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	f := entity.DefaultFilter()
	if err := decodeJSON(r, &f); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s := sessionFrom(r)
	if err := h.market.ApplyFilter(r.Context(), s, f); err != nil {
		writeError(w, h.logger, "Failed to apply market filter", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Store.BuyMarketSnapshot())
}

func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	scope, err := entity.ParseSearchScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, h.logger, "Invalid search scope", err)
		return
	}
	result := h.market.SearchBuyMarket(sessionFrom(r), scope, r.URL.Query().Get("q"))
	writeJSON(w, h.logger, http.StatusOK, result)
}

type sortRequest struct {
	Key   string `json:"key"`
	Order string `json:"order"`
}

func (h *MarketHandler) Sort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	key, err := service.ParseSortKey(req.Key)
	if err != nil {
		writeError(w, h.logger, "Invalid sort key", err)
		return
	}
	order, err := service.ParseSortOrder(req.Order)
	if err != nil {
		writeError(w, h.logger, "Invalid sort order", err)
		return
	}
	s := sessionFrom(r)
	if err := h.market.SortBuyMarket(s, key, order); err != nil {
		writeError(w, h.logger, "Failed to sort market", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Store.BuyMarketSnapshot())
}

func (h *MarketHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var c entity.Coordinate
	if err := decodeJSON(r, &c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !c.Valid() {
		writeError(w, h.logger, "Invalid location",
			fmt.Errorf("%w: coordinate out of range", entity.ErrInvalidLocation))
		return
	}
	sessionFrom(r).Store.SetLocation(&c)
	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketHandler) ClearLocation(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Store.SetLocation(nil)
	w.WriteHeader(http.StatusNoContent)
}

type featuredResponse struct {
	BiasIdol  []entity.SaleListing `json:"bias_idol"`
	BiasGroup []entity.SaleListing `json:"bias_group"`
}

func (h *MarketHandler) RefreshFeatured(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := h.featured.RefreshFeatured(r.Context(), s); err != nil {
		writeError(w, h.logger, "Failed to refresh featured listings", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, featuredResponse{
		BiasIdol:  s.Store.BiasIdolSnapshot(),
		BiasGroup: s.Store.BiasGroupSnapshot(),
	})
}
