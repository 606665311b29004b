package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cafebook/config"
	"cafebook/infras/jwt"
	otelMocks "cafebook/infras/otel/mocks"
	reminderService "cafebook/internal/domains/reminder/service"
	"cafebook/internal/domains/reservation/repository"
	reservationService "cafebook/internal/domains/reservation/service"
	reminderHandler "cafebook/internal/handlers/reminder"
	reservationHandler "cafebook/internal/handlers/reservation"
	notifierMocks "cafebook/internal/notifier/mocks"
	"cafebook/shared/cache"
	"cafebook/shared/rowstore"
	"cafebook/shared/timezone"
	transportHTTP "cafebook/transport/http"
	"cafebook/transport/http/middleware"
	"cafebook/transport/http/router"
)

const apiKey = "bridge-key"

type server struct {
	http  *transportHTTP.HTTP
	jwt   jwt.JWT
	store *rowstore.Memory
}

func newServer(t *testing.T) *server {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockOtel := otelMocks.NewOtel()
	mockNotifier := notifierMocks.NewMockNotifier(ctrl)

	cfg := &config.Config{}
	cfg.App.Name = "cafebook"
	cfg.App.APIKey = apiKey
	cfg.JWT.AccessSecret = "secret"
	cfg.JWT.AccessExpireMin = 60

	now := func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, timezone.GetLocation()) }

	store := rowstore.NewMemory()
	redisCache := cache.NewRedisCache(nil, mockOtel)
	jwtService := jwt.New(cfg)

	reservations := reservationService.NewWithClock(repository.New(store, mockOtel), mockNotifier, cfg, mockOtel, now)
	reminders := reminderService.NewWithClock(reservations, mockNotifier, redisCache, cfg, mockOtel, now)

	r := router.New(
		router.DomainHandlers{
			Reservation: reservationHandler.New(reservations, mockOtel),
			Reminder:    reminderHandler.New(reminders, mockOtel),
		},
		middleware.NewAppMiddleware(mockOtel, cfg, redisCache),
		middleware.NewAuthMiddleware(jwtService, mockOtel, cfg),
	)

	return &server{http: transportHTTP.New(cfg, r), jwt: jwtService, store: store}
}

func (s *server) bearer(t *testing.T, userID string) map[string]string {
	t.Helper()

	token, err := s.jwt.GenerateAccessToken(userID, "name-"+userID)
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token.AccessToken}
}

func (s *server) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)

	return rec
}

func kind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	k, _ := body["kind"].(string)

	return k
}

const roomA = `{"resource_name":"Room A","date":"2025/05/01","start_time":"13:00","end_time":"14:00"}`

func TestHTTP_Health(t *testing.T) {
	s := newServer(t)

	for _, target := range []string{"/", "/health"} {
		rec := s.do(http.MethodGet, target, "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"OK"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	}
}

func TestHTTP_RequestIDIsKept(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "abc"})

	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestHTTP_Metrics(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cafebook_reservation_created_total")
}

func TestHTTP_Auth(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
	}{
		{name: "no credentials", wantCode: http.StatusUnauthorized},
		{name: "malformed bearer", headers: map[string]string{"Authorization": "Token abc"}, wantCode: http.StatusUnauthorized},
		{name: "forged bearer", headers: map[string]string{"Authorization": "Bearer a.b.c"}, wantCode: http.StatusUnauthorized},
		{name: "wrong api key", headers: map[string]string{"X-API-Key": "nope", "X-User-ID": "u1"}, wantCode: http.StatusForbidden},
		{name: "bearer", headers: s.bearer(t, "u1"), wantCode: http.StatusOK},
		{name: "api key", headers: map[string]string{"X-API-Key": apiKey, "X-User-ID": "u1"}, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/v1/reservations/recent", "", tt.headers)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHTTP_ReservationFlow(t *testing.T) {
	s := newServer(t)
	owner := s.bearer(t, "u1")
	bridgeUser := map[string]string{"X-API-Key": apiKey, "X-User-ID": "u2", "X-User-Name": "Bob"}

	rec := s.do(http.MethodPost, "/v1/reservations", roomA, owner)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			Row             int    `json:"row"`
			ReserverDisplay string `json:"reserver_display"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.Data.Row)
	assert.Equal(t, "name-u1", created.Data.ReserverDisplay)

	rec = s.do(http.MethodPost, "/v1/reservations", roomA, bridgeUser)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot_taken", kind(t, rec))

	rec = s.do(http.MethodDelete, "/v1/reservations", roomA, bridgeUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_owner", kind(t, rec))
	assert.Equal(t, 1, s.store.Len())

	rec = s.do(http.MethodDelete, "/v1/reservations", roomA, owner)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.store.Len())

	rec = s.do(http.MethodDelete, "/v1/reservations", roomA, owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", kind(t, rec))
}

func TestHTTP_RemindersRunIsInternal(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/v1/reminders/run", "", s.bearer(t, "u1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/v1/reminders/run", "", map[string]string{"X-API-Key": apiKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"disabled":true,"skipped":false,"checked":0,"due":0,"sent":0,"failed":0}}`, rec.Body.String())
}

func TestHTTP_ServeStopsOnCancel(t *testing.T) {
	s := newServer(t)
	s.http.Config.Server.Env = "development"
	s.http.Config.Server.Host = "127.0.0.1"
	s.http.Config.Server.Port = "0"

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.http.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
