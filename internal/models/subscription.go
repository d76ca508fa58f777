package models

import "time"

// BillingCycle период списания по подписке.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
	CycleWeekly  BillingCycle = "weekly"
	CycleDaily   BillingCycle = "daily"
)

// Valid сообщает, входит ли период в допустимый набор.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleYearly, CycleWeekly, CycleDaily:
		return true
	}
	return false
}

// Subscription подписка пользователя. Поля Category* заполняются при
// выборке с присоединённой категорией.
type Subscription struct {
	ID              int          `json:"id"`
	UserID          string       `json:"user_id"`
	CategoryID      *int         `json:"category_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Cost            Money        `json:"cost"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	NextBillingDate Date         `json:"next_billing_date"`
	WebsiteURL      string       `json:"website_url"`
	CancelURL       string       `json:"cancel_url"`
	IsActive        bool         `json:"is_active"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	CategoryName  *string `json:"category_name,omitempty"`
	CategoryColor *string `json:"category_color,omitempty"`
	CategoryIcon  *string `json:"category_icon,omitempty"`
}

// SubscriptionInput данные для создания подписки.
type SubscriptionInput struct {
	Name            string       `json:"name" validate:"max=255"`
	Description     string       `json:"description"`
	Cost            Money        `json:"cost"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	NextBillingDate Date         `json:"next_billing_date"`
	CategoryID      *int         `json:"category_id"`
	WebsiteURL      string       `json:"website_url" validate:"omitempty,url,max=500"`
	CancelURL       string       `json:"cancel_url" validate:"omitempty,url,max=500"`
}

// SubscriptionPatch частичное обновление подписки.
// Nil в Name, Cost, BillingCycle и NextBillingDate оставляет прежнее значение;
// остальные поля заменяются как есть.
type SubscriptionPatch struct {
	Name            *string       `json:"name" validate:"omitempty,max=255"`
	Description     string        `json:"description"`
	Cost            *Money        `json:"cost"`
	BillingCycle    *BillingCycle `json:"billing_cycle"`
	NextBillingDate *Date         `json:"next_billing_date"`
	CategoryID      *int          `json:"category_id"`
	WebsiteURL      string        `json:"website_url" validate:"omitempty,url,max=500"`
	CancelURL       string        `json:"cancel_url" validate:"omitempty,url,max=500"`
}
