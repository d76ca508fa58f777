package models

import "time"

// Значения оформления категории по умолчанию.
const (
	DefaultCategoryColor = "#1565c0"
	DefaultCategoryIcon  = "📋"
)

// Category глобальная категория подписок, управляется администратором.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryWithStats категория с числом активных подписок и их месячной стоимостью.
type CategoryWithStats struct {
	Category
	SubscriptionCount int   `json:"subscription_count"`
	MonthlyCost       Money `json:"monthly_cost"`
}

// CategoryDetails категория вместе с подписками пользователя в ней.
type CategoryDetails struct {
	Category      Category       `json:"category"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// CategoryInput данные для создания категории.
type CategoryInput struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor,len=7"`
	Icon        string `json:"icon" validate:"omitempty,max=50"`
}

// CategoryPatch частичное обновление категории.
type CategoryPatch struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description string  `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,len=7"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}
