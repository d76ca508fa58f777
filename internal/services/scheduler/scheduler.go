// Package services содержит планировщик напоминаний о продлении подписок.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ReminderRepository выборка кандидатов и запись напоминаний.
type ReminderRepository interface {
	ReminderCandidates(ctx context.Context, from, to models.Date) ([]models.ReminderCandidate, error)
	CreateReminder(ctx context.Context, n models.Notification, renewal models.Date) (int, bool, error)
}

// Publisher отправляет сообщение в очередь.
type Publisher interface {
	Publish(message any) error
}

// SchedulerService периодически создаёт напоминания о продлениях и
// публикует их в очередь отправки.
type SchedulerService struct {
	repo         ReminderRepository
	publisher    Publisher
	interval     time.Duration
	reminderDays int
	log          *slog.Logger
	now          func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ReminderRepository, publisher Publisher, interval time.Duration,
	reminderDays int, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:         repo,
		publisher:    publisher,
		interval:     interval,
		reminderDays: reminderDays,
		log:          log,
		now:          time.Now,
	}
}

// WithClock подменяет источник текущего времени.
func (s *SchedulerService) WithClock(now func() time.Time) *SchedulerService {
	s.now = now
	return s
}

// Run выполняет проход сразу и затем каждые interval, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnceLogged(ctx)
		}
	}
}

func (s *SchedulerService) runOnceLogged(ctx context.Context) {
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("reminder pass failed", sl.Err(err))
		return
	}
	s.log.Info("reminder pass finished", slog.Int("published", n))
}

// RunOnce создаёт напоминания для подписок, продлевающихся в ближайшие
// reminderDays дней, и возвращает число опубликованных сообщений.
// Повторный проход не создаёт дубликатов для той же даты продления.
func (s *SchedulerService) RunOnce(ctx context.Context) (int, error) {
	const op = "services.scheduler.RunOnce"

	today := billing.Today(s.now())
	candidates, err := s.repo.ReminderCandidates(ctx, today, today.AddDays(s.reminderDays))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(candidates) == 0 {
		s.log.Debug("no renewals to remind about")
		return 0, nil
	}

	published := 0
	for _, c := range candidates {
		if err = ctx.Err(); err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		sub := c.Subscription
		days := billing.DaysUntil(sub.NextBillingDate, today)

		id, created, err := s.repo.CreateReminder(ctx, models.Notification{
			UserID:         sub.UserID,
			SubscriptionID: &sub.ID,
			Title:          reminderTitle(sub.Name),
			Message:        reminderText(sub, days),
		}, sub.NextBillingDate)
		if err != nil {
			s.log.Error("failed to create reminder", slog.Int("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		if !created {
			continue
		}

		msg := models.ReminderMessage{
			NotificationID:  id,
			UserID:          sub.UserID,
			Email:           c.Email,
			FirstName:       c.FirstName,
			SubscriptionID:  sub.ID,
			Name:            sub.Name,
			Cost:            sub.Cost,
			NextBillingDate: sub.NextBillingDate,
			DaysUntil:       days,
		}
		if err = s.publisher.Publish(msg); err != nil {
			s.log.Error("failed to publish message", slog.Int("notification_id", id), sl.Err(err))
			continue
		}
		published++
	}
	return published, nil
}

func reminderTitle(name string) string {
	return name + " renews soon"
}

func reminderText(sub models.Subscription, days int) string {
	when := fmt.Sprintf("in %d days", days)
	switch days {
	case 0:
		when = "today"
	case 1:
		when = "tomorrow"
	}
	return fmt.Sprintf("Your %s subscription (%s, %s) renews %s on %s.",
		sub.Name, sub.Cost, sub.BillingCycle, when, sub.NextBillingDate)
}
