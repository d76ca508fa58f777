package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Stats(ctx context.Context) (*models.SystemStats, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*models.SystemStats)
	return res, args.Error(1)
}

func (m *ServiceMock) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]models.UserSummary)
	return res, args.Error(1)
}

func (m *ServiceMock) UserDetails(ctx context.Context, id string) (*models.UserDetails, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*models.UserDetails)
	return res, args.Error(1)
}

func (m *ServiceMock) ToggleUserStatus(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

const userID = "6f1c2f4e-8a57-4c1f-9d51-3f9f0f1a2b3c"

func router(svc Service) http.Handler {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Get("/admin/stats", h.Stats)
	r.Get("/admin/users", h.ListUsers)
	r.Get("/admin/users/{id}", h.UserDetails)
	r.Put("/admin/users/{id}/toggle-status", h.ToggleUserStatus)
	return r
}

func TestStats(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Stats", mock.Anything).Return(&models.SystemStats{
		UserCount:             2,
		SubscriptionCount:     3,
		TotalMonthlyRevenue:   3264,
		AverageMonthlyPerUser: 1632,
		CategoryStats:         []models.CategoryUsage{{ID: 1, Name: "Entertainment", SubscriptionCount: 2}},
	}, nil)

	w := httptest.NewRecorder()
	router(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "32.64", string(resp.Data["total_monthly_revenue"]))
	assert.Equal(t, "16.32", string(resp.Data["average_monthly_per_user"]))
	svc.AssertExpectations(t)
}

func TestUserHandlers(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		url            string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "list users",
			method: http.MethodGet,
			url:    "/admin/users",
			setupMock: func(m *ServiceMock) {
				m.On("ListUsers", mock.Anything).Return([]models.UserSummary{
					{User: models.User{ID: userID, Email: "ann@example.com"}, SubscriptionCount: 2, MonthlySpending: 2598},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"monthly_spending":25.98`,
		},
		{
			name:   "user details",
			method: http.MethodGet,
			url:    "/admin/users/" + userID,
			setupMock: func(m *ServiceMock) {
				m.On("UserDetails", mock.Anything, userID).Return(&models.UserDetails{
					User:          models.User{ID: userID},
					Subscriptions: []models.Subscription{{ID: 1, Name: "Netflix"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Netflix"`,
		},
		{
			name:   "unknown user",
			method: http.MethodGet,
			url:    "/admin/users/not-a-uuid",
			setupMock: func(m *ServiceMock) {
				m.On("UserDetails", mock.Anything, "not-a-uuid").Return(nil, apperr.NotFound("user not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "user not found",
		},
		{
			name:   "toggle status",
			method: http.MethodPut,
			url:    "/admin/users/" + userID + "/toggle-status",
			setupMock: func(m *ServiceMock) {
				m.On("ToggleUserStatus", mock.Anything, userID).Return(false, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"is_active":false`,
		},
		{
			name:   "toggle failure",
			method: http.MethodPut,
			url:    "/admin/users/" + userID + "/toggle-status",
			setupMock: func(m *ServiceMock) {
				m.On("ToggleUserStatus", mock.Anything, userID).Return(false, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			router(svc).ServeHTTP(w, httptest.NewRequest(tt.method, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
