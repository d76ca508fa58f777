// Package services содержит отправку писем-напоминаний о продлении подписок.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// NotificationRepository отмечает уведомление отправленным.
type NotificationRepository interface {
	MarkNotificationSent(ctx context.Context, id int) error
}

// SenderService отправляет письма по сообщениям из очереди напоминаний.
type SenderService struct {
	transport smtp.Dialer
	repo      NotificationRepository
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.Dialer, repo NotificationRepository, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		repo:      repo,
		log:       log,
	}
}

// HandleReminder разбирает сообщение, отправляет письмо и отмечает уведомление.
// Ошибка возвращается, если сообщение нужно обработать повторно.
func (s *SenderService) HandleReminder(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleReminder"

	var msg models.ReminderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// повторная доставка не поможет
		s.log.Error("failed to unmarshal message body, dropping", sl.Err(err))
		return nil
	}
	if msg.Email == "" {
		s.log.Warn("reminder without recipient, dropping", slog.Int("notification_id", msg.NotificationID))
		return nil
	}

	subject, text := composeReminder(msg)
	if err := s.sendEmail([]string{msg.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.repo.MarkNotificationSent(ctx, msg.NotificationID)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("notification disappeared before marking as sent", slog.Int("notification_id", msg.NotificationID))
		return nil
	}
	if err != nil {
		// письмо уже ушло, повтор отправит его ещё раз
		s.log.Error("failed to mark notification as sent", slog.Int("notification_id", msg.NotificationID), sl.Err(err))
	}
	return nil
}

func composeReminder(msg models.ReminderMessage) (subject, text string) {
	when := fmt.Sprintf("in %d days", msg.DaysUntil)
	switch msg.DaysUntil {
	case 0:
		when = "today"
	case 1:
		when = "tomorrow"
	}
	name := msg.FirstName
	if name == "" {
		name = "there"
	}

	subject = fmt.Sprintf("Your %s subscription renews %s", msg.Name, when)
	text = fmt.Sprintf("Hello, %s!\n\nYour %s subscription renews %s (%s) for %s.\n\n"+
		"If you no longer need it, remember to cancel before the renewal date.",
		name, msg.Name, when, msg.NextBillingDate, msg.Cost)
	return subject, text
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		_ = wc.Close()
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit SMTP client", sl.Err(err))
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
