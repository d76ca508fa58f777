// Package models содержит доменные структуры трекера подписок:
// пользователей, администраторов, категории, подписки и уведомления,
// а также типы для денежных сумм и календарных дат.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Admin учётная запись администратора. Подписок не имеет.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary пользователь со сводкой по активным подпискам (для админки).
type UserSummary struct {
	User
	SubscriptionCount int   `json:"subscription_count"`
	MonthlySpending   Money `json:"monthly_spending"`
}

// UserDetails пользователь вместе с его активными подписками.
type UserDetails struct {
	User          User           `json:"user"`
	Subscriptions []Subscription `json:"subscriptions"`
}
