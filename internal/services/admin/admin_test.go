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
	services "github.com/magabrotheeeer/subscription-tracker/internal/services/admin"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

const userID = "5f0c6f2e-8a55-4d2a-9d43-2b8e1f3a7c10"

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CountActiveUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CountActiveSubscriptions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListActiveSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) CategoryUsage(ctx context.Context) ([]models.CategoryUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryUsage), args.Error(1)
}

func (m *RepoMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, id string) ([]models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) ToggleUserStatus(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var activeSubs = []models.Subscription{
	{UserID: "a", Cost: 1000, BillingCycle: models.CycleMonthly, IsActive: true},
	{UserID: "a", Cost: 12000, BillingCycle: models.CycleYearly, IsActive: true},
	{UserID: "b", Cost: 100, BillingCycle: models.CycleDaily, IsActive: true},
}

func TestAdminService_Stats(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountActiveUsers", mock.Anything).Return(3, nil).Once()
	repo.On("CountActiveSubscriptions", mock.Anything).Return(3, nil).Once()
	repo.On("ListActiveSubscriptions", mock.Anything).Return(activeSubs, nil).Once()
	repo.On("CategoryUsage", mock.Anything).Return(nil, nil).Once()

	svc := services.NewAdminService(repo, newNoopLogger())
	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.UserCount)
	assert.Equal(t, 3, got.SubscriptionCount)
	// 1000 + 12000/12 + 100*30
	assert.Equal(t, models.Money(5000), got.TotalMonthlyRevenue)
	assert.Equal(t, models.Money(1667), got.AverageMonthlyPerUser)
	assert.NotNil(t, got.CategoryStats)
	repo.AssertExpectations(t)
}

func TestAdminService_Stats_NoUsers(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountActiveUsers", mock.Anything).Return(0, nil)
	repo.On("CountActiveSubscriptions", mock.Anything).Return(0, nil)
	repo.On("ListActiveSubscriptions", mock.Anything).Return([]models.Subscription{}, nil)
	repo.On("CategoryUsage", mock.Anything).Return([]models.CategoryUsage{}, nil)

	svc := services.NewAdminService(repo, newNoopLogger())
	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.AverageMonthlyPerUser)
}

func TestAdminService_Stats_Error(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountActiveUsers", mock.Anything).Return(0, errors.New("db down"))
	repo.On("CountActiveSubscriptions", mock.Anything).Return(0, nil)
	repo.On("ListActiveSubscriptions", mock.Anything).Return([]models.Subscription{}, nil)
	repo.On("CategoryUsage", mock.Anything).Return([]models.CategoryUsage{}, nil)

	svc := services.NewAdminService(repo, newNoopLogger())
	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestAdminService_ListUsers(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return([]models.User{{ID: "b"}, {ID: "a"}, {ID: "c"}}, nil).Once()
	repo.On("ListActiveSubscriptions", mock.Anything).Return(activeSubs, nil).Once()

	svc := services.NewAdminService(repo, newNoopLogger())
	got, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 1, got[0].SubscriptionCount)
	assert.Equal(t, models.Money(3000), got[0].MonthlySpending)
	assert.Equal(t, 2, got[1].SubscriptionCount)
	assert.Equal(t, models.Money(2000), got[1].MonthlySpending)
	assert.Zero(t, got[2].SubscriptionCount)
}

func TestAdminService_UserDetails(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil).Once()
	repo.On("ListSubscriptions", mock.Anything, userID).Return([]models.Subscription{{ID: 1}}, nil).Once()

	svc := services.NewAdminService(repo, newNoopLogger())
	got, err := svc.UserDetails(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.User.ID)
	assert.Len(t, got.Subscriptions, 1)

	_, err = svc.UserDetails(ctx, "not-a-uuid")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	missing := "00000000-0000-0000-0000-000000000000"
	repo.On("GetUserByID", mock.Anything, missing).Return(nil, fmt.Errorf("x: %w", repository.ErrNotFound)).Once()
	_, err = svc.UserDetails(ctx, missing)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	repo.AssertExpectations(t)
}

func TestAdminService_ToggleUserStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("ToggleUserStatus", mock.Anything, userID).Return(false, nil).Once()

	svc := services.NewAdminService(repo, newNoopLogger())
	active, err := svc.ToggleUserStatus(ctx, userID)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.ToggleUserStatus(ctx, "42")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	repo.AssertNumberOfCalls(t, "ToggleUserStatus", 1)
}
