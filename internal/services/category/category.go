// Package services содержит логику работы с категориями подписок.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgNotFound     = "category not found"
	MsgNameRequired = "category name is required"
	MsgNameTaken    = "category with this name already exists"
)

// CategoryRepository хранилище категорий и подписок пользователя.
type CategoryRepository interface {
	ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error)
	ToggleCategoryStatus(ctx context.Context, id int) (bool, error)
	ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	ListSubscriptionsByCategory(ctx context.Context, userID string, categoryID int) ([]models.Subscription, error)
	ListActiveSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// CategoryService операции над категориями для пользователей и администратора.
type CategoryService struct {
	repo CategoryRepository
	log  *slog.Logger
}

// NewCategoryService создаёт CategoryService.
func NewCategoryService(repo CategoryRepository, log *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: log}
}

// ListForUser возвращает активные категории с количеством и месячной
// стоимостью активных подписок пользователя.
func (s *CategoryService) ListForUser(ctx context.Context, userID string) ([]models.CategoryWithStats, error) {
	const op = "services.category.ListForUser"

	cats, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return withStats(cats, billing.CategoryTotals(subs)), nil
}

// GetForUser возвращает активную категорию и подписки пользователя в ней.
func (s *CategoryService) GetForUser(ctx context.Context, userID string, id int) (*models.CategoryDetails, error) {
	const op = "services.category.GetForUser"

	c, err := s.repo.GetCategory(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !c.IsActive {
		return nil, apperr.NotFound(MsgNotFound)
	}

	subs, err := s.repo.ListSubscriptionsByCategory(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CategoryDetails{Category: *c, Subscriptions: subs}, nil
}

// ListAll возвращает все категории с числом активных подписок по всей системе.
func (s *CategoryService) ListAll(ctx context.Context) ([]models.CategoryWithStats, error) {
	const op = "services.category.ListAll"

	cats, err := s.repo.ListCategories(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := s.repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return withStats(cats, billing.CategoryTotals(subs)), nil
}

// Create создаёт категорию с оформлением по умолчанию.
func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	const op = "services.category.Create"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(MsgNameRequired)
	}
	c := models.Category{
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
	}
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = models.DefaultCategoryIcon
	}

	created, err := s.repo.CreateCategory(ctx, c)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, apperr.Conflict(MsgNameTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("category created", slog.Int("id", created.ID), slog.String("name", created.Name))
	return created, nil
}

// Update частично обновляет категорию.
func (s *CategoryService) Update(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error) {
	const op = "services.category.Update"

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation(MsgNameRequired)
		}
		patch.Name = &name
	}

	updated, err := s.repo.UpdateCategory(ctx, id, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound(MsgNotFound)
	case errors.Is(err, repository.ErrAlreadyExists):
		return nil, apperr.Conflict(MsgNameTaken)
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// ToggleStatus включает или отключает категорию и возвращает новый статус.
func (s *CategoryService) ToggleStatus(ctx context.Context, id int) (bool, error) {
	const op = "services.category.ToggleStatus"

	active, err := s.repo.ToggleCategoryStatus(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("category status toggled", slog.Int("id", id), slog.Bool("is_active", active))
	return active, nil
}

func withStats(cats []models.Category, totals map[int]billing.Totals) []models.CategoryWithStats {
	out := make([]models.CategoryWithStats, 0, len(cats))
	for _, c := range cats {
		t := totals[c.ID]
		out = append(out, models.CategoryWithStats{
			Category:          c,
			SubscriptionCount: t.Count,
			MonthlyCost:       t.MonthlyCost,
		})
	}
	return out
}
