package models

import "time"

// NotificationType тип уведомления.
type NotificationType string

const (
	NotificationRenewalReminder NotificationType = "renewal_reminder"
	NotificationPaymentDue      NotificationType = "payment_due"
	NotificationSystemAlert     NotificationType = "system_alert"
)

// Valid сообщает, входит ли тип в допустимый набор.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationRenewalReminder, NotificationPaymentDue, NotificationSystemAlert:
		return true
	}
	return false
}

// Notification уведомление пользователя.
type Notification struct {
	ID               int              `json:"id"`
	UserID           string           `json:"user_id"`
	SubscriptionID   *int             `json:"subscription_id"`
	SubscriptionName *string          `json:"subscription_name,omitempty"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	IsRead           bool             `json:"is_read"`
	ScheduledFor     *time.Time       `json:"scheduled_for"`
	SentAt           *time.Time       `json:"sent_at"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NotificationInput данные для создания уведомления.
type NotificationInput struct {
	SubscriptionID *int             `json:"subscription_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title" validate:"max=255"`
	Message        string           `json:"message"`
	ScheduledFor   *time.Time       `json:"scheduled_for"`
}

// ReminderMessage сообщение очереди напоминаний о продлении.
type ReminderMessage struct {
	NotificationID  int    `json:"notification_id"`
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	SubscriptionID  int    `json:"subscription_id"`
	Name            string `json:"name"`
	Cost            Money  `json:"cost"`
	NextBillingDate Date   `json:"next_billing_date"`
	DaysUntil       int    `json:"days_until"`
}

// ReminderCandidate подписка активного пользователя, по которой пора напомнить.
type ReminderCandidate struct {
	Subscription Subscription
	Email        string
	FirstName    string
}
