package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

const testUploadLimit = 1 << 20

type apiFixture struct {
	market     *MockMarketService
	featured   *MockFeaturedService
	listings   *MockListingService
	photocards *MockPhotocardService
	profiles   *MockProfileService
	sessions   *service.SessionManager
	metrics    *metrics.MetricsManager
	verifier   *auth.JWTVerifier
	handler    http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	verifier, err := auth.NewJWTVerifier("test-secret")
	require.NoError(t, err)

	log := logger.NewNop()
	f := &apiFixture{
		market:     new(MockMarketService),
		featured:   new(MockFeaturedService),
		listings:   new(MockListingService),
		photocards: new(MockPhotocardService),
		profiles:   new(MockProfileService),
		metrics:    metrics.NewMetricsManager("test"),
		verifier:   verifier,
	}
	f.sessions = service.NewSessionManager(log, f.metrics)
	zl := log.Desugar()
	f.handler = NewRouter(Handlers{
		Market:     NewMarketHandler(f.market, f.featured, zl),
		Listings:   NewListingHandler(f.listings, zl),
		Photocards: NewPhotocardHandler(f.photocards, testUploadLimit, zl),
		Profiles:   NewProfileHandler(f.profiles, zl),
		Stream:     NewStreamHandler(nil, zl),
	}, verifier, f.sessions, f.metrics, log)
	return f
}

func (f *apiFixture) token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := f.verifier.Sign(auth.Identity{UID: uid, Email: uid + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) do(t *testing.T, uid string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+f.token(t, uid))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func card(id, owner, group, idol string) entity.Photocard {
	return entity.Photocard{
		ID:       id,
		Group:    group,
		GroupUID: entity.CatalogUID(group),
		Idol:     idol,
		IdolUID:  entity.CatalogUID(idol),
		Album:    "Born Pink",
		Owner:    entity.Owner{UID: owner},
	}
}

func TestRouter_Healthz_NoAuth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "", httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "", httptest.NewRequest(http.MethodGet, "/api/v1/market", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.market.AssertNotCalled(t, "SearchBuyMarket", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarketHandler_ApplyFilter_KeepsOmittedBoundsOpen(t *testing.T) {
	f := newAPIFixture(t)
	want := entity.DefaultFilter()
	want.PriceHi = 50
	f.market.On("ApplyFilter", mock.Anything, mock.Anything, want).Return(nil).Once()

	rec := f.do(t, "u1", jsonRequest(http.MethodPost, "/api/v1/market/filter", `{"price_hi": 50}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	f.market.AssertExpectations(t)
}

func TestMarketHandler_ApplyFilter_InvalidFilter(t *testing.T) {
	f := newAPIFixture(t)
	f.market.On("ApplyFilter", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: price lower bound 90 is above upper bound 10", entity.ErrInvalidFilter))

	rec := f.do(t, "u1", jsonRequest(http.MethodPost, "/api/v1/market/filter", `{"price_lo": 90, "price_hi": 10}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid filter")
}

func TestMarketHandler_Sort(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "u1", jsonRequest(http.MethodPost, "/api/v1/market/sort", `{"key": "colour"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.market.AssertNotCalled(t, "SortBuyMarket", mock.Anything, mock.Anything, mock.Anything)

	f.market.On("SortBuyMarket", mock.Anything, service.SortByDistance, service.Ascending).
		Return(service.ErrLocationUnavailable).Once()
	rec = f.do(t, "u1", jsonRequest(http.MethodPost, "/api/v1/market/sort", `{"key": "distance"}`))
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestMarketHandler_SetLocation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "u1", jsonRequest(http.MethodPut, "/api/v1/location", `{"lat": -37.81, "long": 144.96}`))
	require.Equal(t, http.StatusNoContent, rec.Code)
	s, ok := f.sessions.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, &entity.Coordinate{Latitude: -37.81, Longitude: 144.96}, s.Store.Location())

	rec = f.do(t, "u1", jsonRequest(http.MethodPut, "/api/v1/location", `{"lat": 123, "long": 0}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "u1", httptest.NewRequest(http.MethodDelete, "/api/v1/location", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, s.Store.Location())
}

func TestListingHandler_Purchase(t *testing.T) {
	f := newAPIFixture(t)
	bought := card("p1", "buyer", "BLACKPINK", "Jisoo")
	f.listings.On("Purchase", mock.Anything, mock.Anything, "p1").Return(&bought, nil).Once()
	f.listings.On("Purchase", mock.Anything, mock.Anything, "p2").Return(nil, service.ErrListingSold).Once()

	rec := f.do(t, "buyer", httptest.NewRequest(http.MethodPost, "/api/v1/listings/p1/purchase", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got entity.Photocard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "buyer", got.Owner.UID)

	rec = f.do(t, "buyer", httptest.NewRequest(http.MethodPost, "/api/v1/listings/p2/purchase", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.APIErrorsTotal.WithLabelValues("/api/v1/listings/{id}/purchase", "409")))
}

func TestListingHandler_AddSaleListing(t *testing.T) {
	f := newAPIFixture(t)
	params := service.SaleListingParams{
		PhotocardID: "p1",
		Price:       25,
		Location:    entity.Location{Title: "Melbourne", Coordinate: entity.Coordinate{Latitude: -37.81, Longitude: 144.96}},
		Condition:   entity.ConditionExcellent,
	}
	listing := entity.SaleListing{Photocard: card("p1", "u1", "BLACKPINK", "Jisoo"), Price: 25}
	f.listings.On("AddSaleListing", mock.Anything, mock.Anything, params).Return(&listing, nil).Once()

	rec := f.do(t, "u1", jsonRequest(http.MethodPost, "/api/v1/listings",
		`{"photocard_id":"p1","price":25,"location":{"title":"Melbourne","lat":-37.81,"long":144.96},"condition":2}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.listings.AssertExpectations(t)
}

func TestListingHandler_DeleteSaleListing_NotOwner(t *testing.T) {
	f := newAPIFixture(t)
	f.listings.On("DeleteSaleListing", mock.Anything, mock.Anything, "p1").Return(service.ErrNotOwner)

	rec := f.do(t, "intruder", httptest.NewRequest(http.MethodDelete, "/api/v1/listings/p1", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile(imageField, "card.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPhotocardHandler_AddPhotocard(t *testing.T) {
	f := newAPIFixture(t)
	created := card("pc-1", "u1", "BLACKPINK", "Jisoo")
	f.photocards.On("AddPhotocard", mock.Anything, mock.Anything, service.NewPhotocardParams{
		Group: "BLACKPINK", Idol: "Jisoo", Album: "Born Pink", Image: []byte("raw-image"),
	}).Return(&created, nil).Once()

	rec := f.do(t, "u1", multipartRequest(t, "/api/v1/photocards",
		map[string]string{"group": "BLACKPINK", "idol": "Jisoo", "album": "Born Pink"}, []byte("raw-image")))

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.photocards.AssertExpectations(t)
}

func TestPhotocardHandler_AddPhotocard_MissingImage(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "u1", multipartRequest(t, "/api/v1/photocards",
		map[string]string{"group": "BLACKPINK", "idol": "Jisoo", "album": "Born Pink"}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.photocards.AssertNotCalled(t, "AddPhotocard", mock.Anything, mock.Anything, mock.Anything)
}

func TestPhotocardHandler_Portfolio_Search(t *testing.T) {
	f := newAPIFixture(t)
	f.photocards.On("LoadPortfolio", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		s := args.Get(1).(*service.Session)
		s.Store.SetPortfolio([]entity.Photocard{
			card("a", "u1", "BLACKPINK", "Jisoo"),
			card("b", "u1", "TWICE", "Nayeon"),
		})
	})

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/portfolio?scope=group&q=twi", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []entity.Photocard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestProfileHandler_GetProfile_EnsuresFirst(t *testing.T) {
	f := newAPIFixture(t)
	profile := &entity.Profile{UID: "u1", Name: "u1"}
	f.profiles.On("EnsureProfile", mock.Anything, mock.Anything).Return(profile, nil).Once()
	f.profiles.On("LoadProfile", mock.Anything, mock.Anything).Return(profile, nil).Once()

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	f.profiles.AssertExpectations(t)
}

func TestProfileHandler_ExternalProfile_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	f.profiles.On("LoadExternalProfile", mock.Anything, mock.Anything, "ghost").
		Return(nil, fmt.Errorf("load profile ghost: %w", repository.ErrNotFound))

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/users/ghost/profile", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileHandler_Groups_Search(t *testing.T) {
	f := newAPIFixture(t)
	f.profiles.On("ListGroups", mock.Anything).Return([]entity.Group{
		{UID: "blackpink", Name: "BLACKPINK"},
		{UID: "twice", Name: "TWICE"},
	}, nil)

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/groups?q=pink", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []entity.Group
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []entity.Group{{UID: "blackpink", Name: "BLACKPINK"}}, got)
}

func TestProfileHandler_Idols_SearchAndUnknownGroup(t *testing.T) {
	f := newAPIFixture(t)
	twice := entity.Group{UID: "twice", Name: "TWICE"}
	f.profiles.On("ListIdols", mock.Anything, "twice").Return([]entity.Idol{
		{UID: "jihyo", Name: "Jihyo", Group: twice},
		{UID: "nayeon", Name: "Nayeon", Group: twice},
	}, nil)
	f.profiles.On("ListIdols", mock.Anything, "itzy").
		Return(nil, fmt.Errorf("list idols: %w", repository.ErrNotFound))

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/groups/twice/idols?q=NAY", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []entity.Idol
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "nayeon", got[0].UID)

	rec = f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/groups/itzy/idols", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/groups/twice/idols?scope=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileHandler_Albums_Search(t *testing.T) {
	f := newAPIFixture(t)
	f.profiles.On("LoadAlbums", mock.Anything, mock.Anything, "TWICE", "Nayeon").Return([]entity.Album{
		{UID: "im nayeon", Name: "IM NAYEON"},
		{UID: "formula of love", Name: "Formula of Love"},
	}, nil)

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/albums?group=TWICE&idol=Nayeon&q=love", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []entity.Album
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []entity.Album{{UID: "formula of love", Name: "Formula of Love"}}, got)
}

func TestStreamHandler_ForwardsSelectedTopics(t *testing.T) {
	f := newAPIFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream?topics=portfolio&access_token=" + f.token(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var snapshot streamMessage
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, service.TopicPortfolio, snapshot.Topic)
	assert.Equal(t, "update", snapshot.Change)

	s, ok := f.sessions.Lookup("u1")
	require.True(t, ok)
	s.Store.SetAlbums([]entity.Album{{UID: "born pink", Name: "Born Pink"}})
	s.Store.AppendPortfolio(card("p1", "u1", "BLACKPINK", "Jisoo"))

	var next struct {
		Topic   string             `json:"topic"`
		Payload []entity.Photocard `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, string(service.TopicPortfolio), next.Topic)
	require.Len(t, next.Payload, 1)
	assert.Equal(t, "p1", next.Payload[0].ID)
}

func TestStreamHandler_UnknownTopic(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "u1", httptest.NewRequest(http.MethodGet, "/api/v1/stream?topics=nope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
