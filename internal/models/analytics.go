package models

// UncategorizedName имя группы для подписок без категории.
const UncategorizedName = "Uncategorized"

// CategorySpend строка разбивки расходов по категориям.
// CategoryID равен nil для группы без категории.
type CategorySpend struct {
	CategoryID  *int   `json:"category_id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Count       int    `json:"count"`
	MonthlyCost Money  `json:"monthly_cost"`
}

// Renewal предстоящее или просроченное продление подписки.
type Renewal struct {
	SubscriptionID  int          `json:"subscription_id"`
	Name            string       `json:"name"`
	Cost            Money        `json:"cost"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	NextBillingDate Date         `json:"next_billing_date"`
	CategoryName    *string      `json:"category_name,omitempty"`
	DaysUntil       int          `json:"days_until"`
	DaysOverdue     int          `json:"days_overdue,omitempty"`
}

// Analytics сводка расходов пользователя.
type Analytics struct {
	TotalMonthlyCost  Money           `json:"total_monthly_cost"`
	CategoryBreakdown []CategorySpend `json:"category_breakdown"`
	UpcomingRenewals  []Renewal       `json:"upcoming_renewals"`
	OverdueRenewals   []Renewal       `json:"overdue_renewals"`
}

// CategoryUsage число активных подписок в категории по всей системе.
type CategoryUsage struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Color             string `json:"color"`
	Icon              string `json:"icon"`
	SubscriptionCount int    `json:"subscription_count"`
}

// SystemStats общая статистика для администратора.
type SystemStats struct {
	UserCount             int             `json:"user_count"`
	SubscriptionCount     int             `json:"subscription_count"`
	TotalMonthlyRevenue   Money           `json:"total_monthly_revenue"`
	AverageMonthlyPerUser Money           `json:"average_monthly_per_user"`
	CategoryStats         []CategoryUsage `json:"category_stats"`
}
