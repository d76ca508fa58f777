package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	services "github.com/magabrotheeeer/subscription-tracker/internal/services/category"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *RepoMock) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) CreateCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) UpdateCategory(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *RepoMock) ToggleCategoryStatus(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) ListSubscriptionsByCategory(ctx context.Context, userID string, categoryID int) ([]models.Subscription, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) ListActiveSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func intRef(v int) *int { return &v }

var notFound = fmt.Errorf("storage: %w", repository.ErrNotFound)

func TestCategoryService_ListForUser(t *testing.T) {
	repo := new(RepoMock)
	cats := []models.Category{{ID: 1, Name: "Music", IsActive: true}, {ID: 2, Name: "News", IsActive: true}}
	subs := []models.Subscription{
		{ID: 1, CategoryID: intRef(1), Cost: 999, BillingCycle: models.CycleMonthly, IsActive: true},
		{ID: 2, CategoryID: intRef(1), Cost: 12000, BillingCycle: models.CycleYearly, IsActive: true},
		{ID: 3, Cost: 500, BillingCycle: models.CycleMonthly, IsActive: true},
	}
	repo.On("ListCategories", mock.Anything, true).Return(cats, nil).Once()
	repo.On("ListSubscriptions", mock.Anything, "u1").Return(subs, nil).Once()

	svc := services.NewCategoryService(repo, newNoopLogger())
	got, err := svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].SubscriptionCount)
	assert.Equal(t, models.Money(1999), got[0].MonthlyCost)
	assert.Zero(t, got[1].SubscriptionCount)
	assert.Zero(t, got[1].MonthlyCost)
	repo.AssertExpectations(t)
}

func TestCategoryService_GetForUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantKind   apperr.Kind
		wantErr    bool
	}{
		{
			name: "active category",
			setupMocks: func(r *RepoMock) {
				r.On("GetCategory", mock.Anything, 4).Return(&models.Category{ID: 4, IsActive: true}, nil).Once()
				r.On("ListSubscriptionsByCategory", mock.Anything, "u1", 4).
					Return([]models.Subscription{{ID: 9}}, nil).Once()
			},
		},
		{
			name: "inactive category",
			setupMocks: func(r *RepoMock) {
				r.On("GetCategory", mock.Anything, 4).Return(&models.Category{ID: 4, IsActive: false}, nil).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindNotFound,
		},
		{
			name: "missing category",
			setupMocks: func(r *RepoMock) {
				r.On("GetCategory", mock.Anything, 4).Return(nil, notFound).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindNotFound,
		},
		{
			name: "storage failure",
			setupMocks: func(r *RepoMock) {
				r.On("GetCategory", mock.Anything, 4).Return(nil, errors.New("boom")).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := services.NewCategoryService(repo, newNoopLogger())

			got, err := svc.GetForUser(ctx, "u1", 4)
			if tt.wantErr {
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Subscriptions, 1)
			repo.AssertExpectations(t)
		})
	}
}

func TestCategoryService_ListAll(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListCategories", mock.Anything, false).
		Return([]models.Category{{ID: 1, Name: "Old", IsActive: false}}, nil).Once()
	repo.On("ListActiveSubscriptions", mock.Anything).Return([]models.Subscription{
		{UserID: "a", CategoryID: intRef(1), Cost: 100, BillingCycle: models.CycleMonthly, IsActive: true},
		{UserID: "b", CategoryID: intRef(1), Cost: 100, BillingCycle: models.CycleMonthly, IsActive: true},
	}, nil).Once()

	svc := services.NewCategoryService(repo, newNoopLogger())
	got, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsActive)
	assert.Equal(t, 2, got[0].SubscriptionCount)
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateCategory", mock.Anything, models.Category{
			Name:  "Cloud",
			Color: models.DefaultCategoryColor,
			Icon:  models.DefaultCategoryIcon,
		}).Return(&models.Category{ID: 11, Name: "Cloud"}, nil).Once()

		svc := services.NewCategoryService(repo, newNoopLogger())
		got, err := svc.Create(ctx, models.CategoryInput{Name: " Cloud "})
		require.NoError(t, err)
		assert.Equal(t, 11, got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("name required", func(t *testing.T) {
		svc := services.NewCategoryService(new(RepoMock), newNoopLogger())
		_, err := svc.Create(ctx, models.CategoryInput{Name: ""})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateCategory", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("storage: %w", repository.ErrAlreadyExists)).Once()
		svc := services.NewCategoryService(repo, newNoopLogger())
		_, err := svc.Create(ctx, models.CategoryInput{Name: "Music"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestCategoryService_UpdateAndToggle(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	color := "#ffffff"
	repo.On("UpdateCategory", mock.Anything, 3, models.CategoryPatch{Color: &color}).
		Return(&models.Category{ID: 3, Color: color}, nil).Once()
	repo.On("UpdateCategory", mock.Anything, 404, mock.Anything).Return(nil, notFound).Once()
	repo.On("ToggleCategoryStatus", mock.Anything, 3).Return(false, nil).Once()
	repo.On("ToggleCategoryStatus", mock.Anything, 404).Return(false, notFound).Once()

	svc := services.NewCategoryService(repo, newNoopLogger())

	got, err := svc.Update(ctx, 3, models.CategoryPatch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, got.Color)

	_, err = svc.Update(ctx, 404, models.CategoryPatch{})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	blank := " "
	_, err = svc.Update(ctx, 3, models.CategoryPatch{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	active, err := svc.ToggleStatus(ctx, 3)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.ToggleStatus(ctx, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	repo.AssertExpectations(t)
}
