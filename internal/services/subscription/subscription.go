// Package services содержит бизнес-логику управления подписками пользователя
// и кеширование сводки расходов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgNotFound         = "subscription not found"
	MsgCategoryNotFound = "category not found"
	MsgNameRequired     = "name is required"
	MsgCostPositive     = "cost must be greater than zero"
	MsgDateRequired     = "next_billing_date is required"
	MsgInvalidCycle     = "billing_cycle must be one of monthly, yearly, weekly, daily"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	GetSubscription(ctx context.Context, userID string, id int) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	UpdateSubscription(ctx context.Context, userID string, id int, patch models.SubscriptionPatch) (int64, error)
	DeactivateSubscription(ctx context.Context, userID string, id int) (int64, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Options время жизни записей кеша.
type Options struct {
	AnalyticsTTL    time.Duration
	SubscriptionTTL time.Duration
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	opts  Options
	log   *slog.Logger
	now   func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, opts Options, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		opts:  opts,
		log:   log,
		now:   time.Now,
	}
}

// WithClock подменяет источник текущего времени.
func (s *SubscriptionService) WithClock(now func() time.Time) *SubscriptionService {
	s.now = now
	return s
}

// List возвращает активные подписки пользователя.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "services.subscription.List"
	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// Get возвращает подписку пользователя, используя кеш или репозиторий.
func (s *SubscriptionService) Get(ctx context.Context, userID string, id int) (*models.Subscription, error) {
	const op = "services.subscription.Get"
	key := cache.SubscriptionKey(userID, id)

	var cached models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.Set(ctx, key, sub, s.opts.SubscriptionTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return sub, nil
}

// Create создаёт подписку и возвращает её вместе с данными категории.
func (s *SubscriptionService) Create(ctx context.Context, userID string, in models.SubscriptionInput) (*models.Subscription, error) {
	const op = "services.subscription.Create"

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, apperr.Validation(MsgNameRequired)
	case in.Cost <= 0:
		return nil, apperr.Validation(MsgCostPositive)
	case in.NextBillingDate.IsZero():
		return nil, apperr.Validation(MsgDateRequired)
	}
	cycle := in.BillingCycle
	if cycle == "" {
		cycle = models.CycleMonthly
	}
	if !cycle.Valid() {
		return nil, apperr.Validation(MsgInvalidCycle)
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateSubscription(ctx, models.Subscription{
		UserID:          userID,
		CategoryID:      in.CategoryID,
		Name:            name,
		Description:     in.Description,
		Cost:            in.Cost,
		BillingCycle:    cycle,
		NextBillingDate: in.NextBillingDate,
		WebsiteURL:      in.WebsiteURL,
		CancelURL:       in.CancelURL,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(MsgCategoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new subscription", slog.Int("id", id))
	s.invalidate(ctx, cache.AnalyticsKey(userID))

	created, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update частично обновляет подписку и возвращает её новое состояние.
func (s *SubscriptionService) Update(ctx context.Context, userID string, id int, patch models.SubscriptionPatch) (*models.Subscription, error) {
	const op = "services.subscription.Update"

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation(MsgNameRequired)
		}
		patch.Name = &name
	}
	if patch.Cost != nil && *patch.Cost <= 0 {
		return nil, apperr.Validation(MsgCostPositive)
	}
	if patch.BillingCycle != nil && !patch.BillingCycle.Valid() {
		return nil, apperr.Validation(MsgInvalidCycle)
	}
	if patch.NextBillingDate != nil && patch.NextBillingDate.IsZero() {
		patch.NextBillingDate = nil
	}
	if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
		return nil, err
	}

	n, err := s.repo.UpdateSubscription(ctx, userID, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(MsgCategoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, apperr.NotFound(MsgNotFound)
	}
	s.invalidate(ctx, cache.AnalyticsKey(userID), cache.SubscriptionKey(userID, id))

	updated, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Remove помечает подписку неактивной.
func (s *SubscriptionService) Remove(ctx context.Context, userID string, id int) error {
	const op = "services.subscription.Remove"

	n, err := s.repo.DeactivateSubscription(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return apperr.NotFound(MsgNotFound)
	}
	s.invalidate(ctx, cache.AnalyticsKey(userID), cache.SubscriptionKey(userID, id))
	s.log.Info("subscription deactivated", slog.Int("id", id))
	return nil
}

// analyticsEntry запись кеша сводки. Сроки продлений в сводке верны только
// для дня Day.
type analyticsEntry struct {
	Day       string           `json:"day"`
	Analytics models.Analytics `json:"analytics"`
}

// Analytics возвращает сводку расходов пользователя.
// Запись кеша, посчитанная в другой день, считается промахом.
func (s *SubscriptionService) Analytics(ctx context.Context, userID string) (*models.Analytics, error) {
	const op = "services.subscription.Analytics"
	key := cache.AnalyticsKey(userID)
	today := billing.Today(s.now())

	var cached analyticsEntry
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
	}
	if found && cached.Day == today.String() {
		return &cached.Analytics, nil
	}

	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := billing.Summarize(subs, today)

	entry := analyticsEntry{Day: today.String(), Analytics: result}
	if err = s.cache.Set(ctx, key, entry, s.opts.AnalyticsTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return &result, nil
}

func (s *SubscriptionService) checkCategory(ctx context.Context, id *int) error {
	const op = "services.subscription.checkCategory"
	if id == nil {
		return nil
	}
	c, err := s.repo.GetCategory(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(MsgCategoryNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !c.IsActive {
		return apperr.NotFound(MsgCategoryNotFound)
	}
	return nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.Any("keys", keys), sl.Err(err))
	}
}
