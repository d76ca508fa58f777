package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, userID string, id int) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func newRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/subscriptions/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middlewarectx.WithPrincipal(ctx, models.Principal{ID: "u-1", Kind: models.KindUser})
	return req.WithContext(ctx)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "removed",
			id:   "12",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, "u-1", 12).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "subscription deleted",
		},
		{
			name: "already removed",
			id:   "12",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, "u-1", 12).Return(apperr.NotFound("subscription not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "subscription not found",
		},
		{
			name:           "bad id",
			id:             "-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid subscription id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, newRequest(tt.id))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
