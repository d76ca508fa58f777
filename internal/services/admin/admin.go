// Package services содержит операции панели администратора.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// MsgUserNotFound сообщение для отсутствующего пользователя.
const MsgUserNotFound = "user not found"

// AdminRepository хранилище, используемое панелью администратора.
type AdminRepository interface {
	CountActiveUsers(ctx context.Context) (int, error)
	CountActiveSubscriptions(ctx context.Context) (int, error)
	ListActiveSubscriptions(ctx context.Context) ([]models.Subscription, error)
	CategoryUsage(ctx context.Context) ([]models.CategoryUsage, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	ToggleUserStatus(ctx context.Context, id string) (bool, error)
}

// AdminService статистика и управление пользователями.
type AdminService struct {
	repo AdminRepository
	log  *slog.Logger
}

// NewAdminService создаёт AdminService.
func NewAdminService(repo AdminRepository, log *slog.Logger) *AdminService {
	return &AdminService{repo: repo, log: log}
}

// Stats собирает общую статистику системы.
func (s *AdminService) Stats(ctx context.Context) (*models.SystemStats, error) {
	const op = "services.admin.Stats"

	var (
		stats models.SystemStats
		subs  []models.Subscription
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountActiveUsers(gctx)
		stats.UserCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveSubscriptions(gctx)
		stats.SubscriptionCount = n
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = s.repo.ListActiveSubscriptions(gctx)
		return err
	})
	g.Go(func() error {
		usage, err := s.repo.CategoryUsage(gctx)
		stats.CategoryStats = usage
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats.TotalMonthlyRevenue = billing.Total(subs)
	stats.AverageMonthlyPerUser = billing.AveragePerUser(stats.TotalMonthlyRevenue, stats.UserCount)
	if stats.CategoryStats == nil {
		stats.CategoryStats = []models.CategoryUsage{}
	}
	return &stats, nil
}

// ListUsers возвращает пользователей с числом активных подписок и месячными расходами.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	const op = "services.admin.ListUsers"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := s.repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totals := billing.TotalsByUser(subs)
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		t := totals[u.ID]
		out = append(out, models.UserSummary{
			User:              u,
			SubscriptionCount: t.Count,
			MonthlySpending:   t.MonthlyCost,
		})
	}
	return out, nil
}

// UserDetails возвращает пользователя и его активные подписки.
func (s *AdminService) UserDetails(ctx context.Context, id string) (*models.UserDetails, error) {
	const op = "services.admin.UserDetails"

	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := s.repo.ListSubscriptions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.UserDetails{User: *user, Subscriptions: subs}, nil
}

// ToggleUserStatus включает или отключает пользователя и возвращает новый статус.
func (s *AdminService) ToggleUserStatus(ctx context.Context, id string) (bool, error) {
	const op = "services.admin.ToggleUserStatus"

	if _, err := uuid.Parse(id); err != nil {
		return false, apperr.NotFound(MsgUserNotFound)
	}
	active, err := s.repo.ToggleUserStatus(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user status toggled", slog.String("user_id", id), slog.Bool("is_active", active))
	return active, nil
}
