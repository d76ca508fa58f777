// Package services содержит логику уведомлений пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// ListLimit максимальное число уведомлений в списке.
const ListLimit = 50

// Сообщения об ошибках, которые видит клиент.
const (
	MsgNotFound             = "notification not found"
	MsgSubscriptionNotFound = "subscription not found"
	MsgFieldsRequired       = "title and message are required"
	MsgInvalidType          = "type must be one of payment_due, system_alert"
	MsgDuplicate            = "notification already exists"
)

// NotificationRepository хранилище уведомлений.
type NotificationRepository interface {
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, id int) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	GetSubscription(ctx context.Context, userID string, id int) (*models.Subscription, error)
}

// NotificationService операции над уведомлениями пользователя.
type NotificationService struct {
	repo NotificationRepository
	log  *slog.Logger
}

// NewNotificationService создаёт NotificationService.
func NewNotificationService(repo NotificationRepository, log *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// List возвращает последние уведомления пользователя, новые первыми.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	const op = "services.notification.List"
	list, err := s.repo.ListNotifications(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// MarkRead отмечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int) error {
	const op = "services.notification.MarkRead"
	n, err := s.repo.MarkNotificationRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return apperr.NotFound(MsgNotFound)
	}
	return nil
}

// MarkAllRead отмечает прочитанными все уведомления и возвращает их число.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const op = "services.notification.MarkAllRead"
	n, err := s.repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// UnreadCount возвращает число непрочитанных уведомлений.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	const op = "services.notification.UnreadCount"
	n, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// Create создаёт уведомление. Подписка, если указана, должна принадлежать пользователю.
func (s *NotificationService) Create(ctx context.Context, userID string, in models.NotificationInput) (*models.Notification, error) {
	const op = "services.notification.Create"

	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return nil, apperr.Validation(MsgFieldsRequired)
	}
	kind := in.Type
	if kind == "" {
		kind = models.NotificationSystemAlert
	}
	// renewal_reminder создаёт только планировщик
	if !kind.Valid() || kind == models.NotificationRenewalReminder {
		return nil, apperr.Validation(MsgInvalidType)
	}

	if in.SubscriptionID != nil {
		_, err := s.repo.GetSubscription(ctx, userID, *in.SubscriptionID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(MsgSubscriptionNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	created, err := s.repo.CreateNotification(ctx, models.Notification{
		UserID:         userID,
		SubscriptionID: in.SubscriptionID,
		Type:           kind,
		Title:          title,
		Message:        message,
		ScheduledFor:   in.ScheduledFor,
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, apperr.Conflict(MsgDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("notification created", slog.Int("id", created.ID))
	return created, nil
}
