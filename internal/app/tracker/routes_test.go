package tracker

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	customjwt "github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	authservice "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

// stubSubscriptions реализует только List; остальные методы не вызываются.
type stubSubscriptions struct {
	SubscriptionService
}

func (stubSubscriptions) List(context.Context, string) ([]models.Subscription, error) {
	return []models.Subscription{{ID: 1, Name: "Netflix"}}, nil
}

type stubAdmin struct{}

func (stubAdmin) Stats(context.Context) (*models.SystemStats, error) {
	return &models.SystemStats{UserCount: 1}, nil
}

func (stubAdmin) ListUsers(context.Context) ([]models.UserSummary, error) { return nil, nil }

func (stubAdmin) UserDetails(context.Context, string) (*models.UserDetails, error) { return nil, nil }

func (stubAdmin) ToggleUserStatus(context.Context, string) (bool, error) { return false, nil }

func newTestRouter(t *testing.T) (http.Handler, *customjwt.MakerImpl) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := customjwt.NewJWTMaker("test-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Auth:          authservice.NewAuthService(nil, nil, nil, maker, logger),
		Subscriptions: stubSubscriptions{},
		Admin:         stubAdmin{},
		Health:        map[string]health.Pinger{},
	}, middlewarectx.NewMetrics(), middlewarectx.NewLimiter(100, 100))
	return r, maker
}

func TestRoutesAccessByPrincipalKind(t *testing.T) {
	router, maker := newTestRouter(t)

	userToken, err := maker.GenerateToken(models.Principal{ID: "u-1", Email: "ann@example.com", Kind: models.KindUser})
	require.NoError(t, err)
	adminToken, err := maker.GenerateToken(models.Principal{ID: "a-1", Email: "admin@example.com", Kind: models.KindAdmin})
	require.NoError(t, err)

	tests := []struct {
		name           string
		url            string
		token          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health is public",
			url:            "/api/health",
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
		{
			name:           "subscriptions without token",
			url:            "/api/subscriptions",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   middlewarectx.MsgMissingToken,
		},
		{
			name:           "subscriptions with user token",
			url:            "/api/subscriptions",
			token:          userToken,
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Netflix"`,
		},
		{
			name:           "subscriptions with admin token",
			url:            "/api/subscriptions",
			token:          adminToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin stats with user token",
			url:            "/api/admin/stats",
			token:          userToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin stats with admin token",
			url:            "/api/admin/stats",
			token:          adminToken,
			expectedStatus: http.StatusOK,
			expectedBody:   `"user_count":1`,
		},
		{
			name:           "unknown route",
			url:            "/api/unknown",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/subscriptions", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `subscription_tracker_auth_checks_total{kind="user",outcome="missing"} 1`)
	assert.Contains(t, w.Body.String(), `route="/api/subscriptions"`)
}
