package adminlogin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) AdminLogin(ctx context.Context, email, password string) (*models.AdminAuthResult, error) {
	args := m.Called(ctx, email, password)
	if res := args.Get(0); res != nil {
		return res.(*models.AdminAuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAdminLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"email":"admin@example.com","password":"admin123"}`,
			setupMock: func(m *MockService) {
				m.On("AdminLogin", mock.Anything, "admin@example.com", "admin123").
					Return(&models.AdminAuthResult{Token: "admin-tok", Admin: models.Admin{ID: "a-1", Name: "Root"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"admin-tok"`,
		},
		{
			name: "invalid credentials",
			body: `{"email":"admin@example.com","password":"nope"}`,
			setupMock: func(m *MockService) {
				m.On("AdminLogin", mock.Anything, "admin@example.com", "nope").
					Return(nil, apperr.Auth("invalid admin credentials"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid admin credentials",
		},
		{
			name: "deactivated",
			body: `{"email":"admin@example.com","password":"admin123"}`,
			setupMock: func(m *MockService) {
				m.On("AdminLogin", mock.Anything, "admin@example.com", "admin123").
					Return(nil, apperr.Auth("admin account is deactivated"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "admin account is deactivated",
		},
		{
			name:           "missing email",
			body:           `{"password":"admin123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Email is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/admin/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
