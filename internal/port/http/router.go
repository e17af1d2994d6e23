package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

type Handlers struct {
	Market     *MarketHandler
	Listings   *ListingHandler
	Photocards *PhotocardHandler
	Profiles   *ProfileHandler
	Stream     *StreamHandler
}

func NewRouter(
	h Handlers,
	verifier auth.TokenVerifier,
	sessions *service.SessionManager,
	m *metrics.MetricsManager,
	log logger.Logger,
) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.RealIP, Logger(log.Desugar()), middleware.Recoverer)
	if m != nil {
		mux.Use(Metrics(m))
	}

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(verifier, log), Sessions(sessions))

		r.Get("/stream", h.Stream.Stream)

		r.Post("/market/filter", h.Market.ApplyFilter)
		r.Get("/market", h.Market.Search)
		r.Post("/market/sort", h.Market.Sort)
		r.Post("/featured/refresh", h.Market.RefreshFeatured)
		r.Put("/location", h.Market.SetLocation)
		r.Delete("/location", h.Market.ClearLocation)

		r.Post("/listings", h.Listings.AddSaleListing)
		r.Get("/listings/mine", h.Listings.MySales)
		r.Delete("/listings/{id}", h.Listings.DeleteSaleListing)
		r.Post("/listings/{id}/purchase", h.Listings.Purchase)

		r.Get("/portfolio", h.Photocards.Portfolio)
		r.Get("/favourites", h.Photocards.Favourites)
		r.Post("/photocards", h.Photocards.AddPhotocard)
		r.Delete("/photocards/{id}", h.Photocards.DeletePhotocard)
		r.Put("/photocards/{id}/favourite", h.Photocards.ChangeFavourite)
		r.Put("/photocards/{id}/image", h.Photocards.ChangeImage)

		r.Get("/profile", h.Profiles.GetProfile)
		r.Put("/profile/fav-group", h.Profiles.SetFavGroup)
		r.Delete("/profile/fav-group", h.Profiles.ClearFavGroup)
		r.Put("/profile/fav-idol", h.Profiles.SetFavIdol)
		r.Delete("/profile/fav-idol", h.Profiles.ClearFavIdol)
		r.Get("/users/{uid}/profile", h.Profiles.ExternalProfile)
		r.Get("/albums", h.Profiles.Albums)
		r.Get("/groups", h.Profiles.Groups)
		r.Get("/groups/{group}/idols", h.Profiles.Idols)
	})

	return otelhttp.NewHandler(mux, "photocard-service.http")
}
