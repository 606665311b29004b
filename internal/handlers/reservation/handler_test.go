package reservation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cafebook/config"
	otelMocks "cafebook/infras/otel/mocks"
	"cafebook/internal/domains/reservation/repository"
	"cafebook/internal/domains/reservation/service"
	"cafebook/internal/handlers/reservation"
	notifierMocks "cafebook/internal/notifier/mocks"
	"cafebook/shared/constant"
	"cafebook/shared/rowstore"
	"cafebook/shared/timezone"
)

const testUserHeader = "X-Test-User"

func newRouter(t *testing.T, store *rowstore.Memory) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockOtel := otelMocks.NewOtel()
	now := func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, timezone.GetLocation()) }

	svc := service.NewWithClock(repository.New(store, mockOtel), notifierMocks.NewMockNotifier(ctrl), &config.Config{}, mockOtel, now)
	handler := reservation.New(svc, mockOtel)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := r.Header.Get(testUserHeader); user != "" {
				r = r.WithContext(context.WithValue(r.Context(), constant.ContextKeyUserID, user))
			}

			next.ServeHTTP(w, r)
		})
	})
	handler.Router(router)

	return router
}

func do(t *testing.T, h http.Handler, method, target, user, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if user != "" {
		req.Header.Set(testUserHeader, user)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}

	return rec, payload
}

func TestHandler_Reserve(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		body     string
		wantCode int
		wantKind string
	}{
		{
			name:     "created",
			user:     "u2",
			body:     `{"resource_name":"Room A","date":"2025/05/01","start_time":"14:00","end_time":"15:00"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "overlap",
			user:     "u2",
			body:     `{"resource_name":"Room A","date":"2025/05/01","start_time":"13:30","end_time":"14:30"}`,
			wantCode: http.StatusConflict,
			wantKind: "slot_taken",
		},
		{
			name:     "missing field",
			user:     "u2",
			body:     `{"resource_name":"Room A","date":"2025/05/01","start_time":"13:30"}`,
			wantCode: http.StatusBadRequest,
			wantKind: "bad_request",
		},
		{
			name:     "bad date",
			user:     "u2",
			body:     `{"resource_name":"Room A","date":"May 1","start_time":"13:30","end_time":"14:30"}`,
			wantCode: http.StatusBadRequest,
			wantKind: "invalid_format",
		},
		{
			name:     "anonymous",
			body:     `{"resource_name":"Room A","date":"2025/05/01","start_time":"16:00","end_time":"17:00"}`,
			wantCode: http.StatusUnauthorized,
			wantKind: "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := rowstore.NewMemory([]string{"u1", "Room A", "2025/05/01", "13:00", "14:00", "u1", "", "[]", "FALSE"})
			router := newRouter(t, store)

			rec, payload := do(t, router, http.MethodPost, "/reservations", tt.user, tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, payload["kind"])

				return
			}

			data, ok := payload["data"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "14:00", data["start_time"])
			assert.Equal(t, tt.user, data["owner_id"])
			assert.Equal(t, 2, store.Len())
		})
	}
}

func TestHandler_Availability(t *testing.T) {
	store := rowstore.NewMemory([]string{"u1", "Room A", "2025/05/01", "13:00", "14:00", "u1", "", "[]", "FALSE"})
	router := newRouter(t, store)

	rec, payload := do(t, router, http.MethodPost, "/reservations/availability", "u1",
		`{"resources":["Room A","Room B"],"date":"2025/05/01","start_time":"13:30","end_time":"14:30"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, []any{"Room B"}, data["available"])
}

func TestHandler_Cancel(t *testing.T) {
	body := `{"resource_name":"Room A","date":"2025/05/01","start_time":"13:00","end_time":"14:00"}`

	tests := []struct {
		name     string
		user     string
		wantCode int
		wantRows int
	}{
		{name: "owner", user: "u1", wantCode: http.StatusOK, wantRows: 0},
		{name: "someone else", user: "u2", wantCode: http.StatusForbidden, wantRows: 1},
		{name: "anonymous", wantCode: http.StatusUnauthorized, wantRows: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := rowstore.NewMemory([]string{"u1", "Room A", "2025/05/01", "13:00", "14:00", "u1", "", "[]", "FALSE"})
			router := newRouter(t, store)

			rec, _ := do(t, router, http.MethodDelete, "/reservations", tt.user, body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantRows, store.Len())
		})
	}
}

func TestHandler_Listings(t *testing.T) {
	store := rowstore.NewMemory(
		[]string{"u1", "Room A", "2025/05/01", "09:00", "10:00", "u1", "", "[]", "FALSE"},
		[]string{"u1", "Room A", "2025/05/01", "13:00", "14:00", "u1", "", "[]", "FALSE"},
		[]string{"u2", "Room B", "2025/05/01", "13:00", "14:00", "u2", "", "[]", "FALSE"},
	)
	router := newRouter(t, store)

	tests := []struct {
		name      string
		target    string
		user      string
		wantCode  int
		wantTotal float64
	}{
		{name: "all", target: "/reservations", user: "u1", wantCode: http.StatusOK, wantTotal: 3},
		{name: "by resource", target: "/reservations?resource=Room+B", user: "u1", wantCode: http.StatusOK, wantTotal: 1},
		{name: "active by owner", target: "/reservations?owner_id=u1&active=true", user: "u1", wantCode: http.StatusOK, wantTotal: 1},
		{name: "mine", target: "/reservations/mine", user: "u1", wantCode: http.StatusOK, wantTotal: 1},
		{name: "recent", target: "/reservations/recent?limit=2", user: "u1", wantCode: http.StatusOK, wantTotal: 2},
		{name: "bad date", target: "/reservations?date=soon", user: "u1", wantCode: http.StatusBadRequest},
		{name: "mine anonymous", target: "/reservations/mine", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, payload := do(t, router, http.MethodGet, tt.target, tt.user, "")

			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode != http.StatusOK {
				return
			}

			data := payload["data"].(map[string]any)
			assert.Equal(t, tt.wantTotal, data["total"])
		})
	}
}

func TestHandler_UpdateParticipants(t *testing.T) {
	store := rowstore.NewMemory([]string{"u1", "Room A", "2025/05/01", "13:00", "14:00", "u1", "", "[]", "FALSE"})
	router := newRouter(t, store)

	body := `{"resource_name":"Room A","date":"2025/05/01","start_time":"13:00","end_time":"14:00",
		"participants":[{"id":"u2","name":"Bob"},{"id":"u1"}]}`

	rec, _ := do(t, router, http.MethodPut, "/reservations/participants", "u3", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, payload := do(t, router, http.MethodPut, "/reservations/participants", "u1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	data := payload["data"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"id": "u2", "name": "Bob"}}, data["participants"])
}
