// Package billing приводит стоимость подписок к месячному эквиваленту
// и строит по ним агрегаты: итог, разбивку по категориям, ближайшие
// и просроченные продления.
//
// Все функции чистые и учитывают только активные подписки. Промежуточные
// суммы считаются в копейках без округления, округляется только итог.
package billing

import (
	"math"
	"sort"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Коэффициенты пересчёта в месяц.
const (
	WeeksPerMonth = 4.33
	DaysPerMonth  = 30
	MonthsPerYear = 12
)

// RenewalWindowDays ширина окна ближайших продлений, включая обе границы.
const RenewalWindowDays = 30

// MonthlyEquivalent возвращает месячный эквивалент стоимости в копейках
// без округления. Неизвестный период считается месячным.
func MonthlyEquivalent(cost models.Money, cycle models.BillingCycle) float64 {
	c := float64(cost.Cents())
	switch cycle {
	case models.CycleMonthly:
		return c
	case models.CycleYearly:
		return c / MonthsPerYear
	case models.CycleWeekly:
		return c * WeeksPerMonth
	case models.CycleDaily:
		return c * DaysPerMonth
	default:
		return c
	}
}

// Round округляет сумму в копейках до целой копейки.
func Round(cents float64) models.Money {
	return models.Money(math.Round(cents))
}

// Totals количество и месячная стоимость группы подписок.
type Totals struct {
	Count       int
	MonthlyCost models.Money
}

// Total суммарная месячная стоимость активных подписок.
func Total(subs []models.Subscription) models.Money {
	var sum float64
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		sum += MonthlyEquivalent(s.Cost, s.BillingCycle)
	}
	return Round(sum)
}

type accumulator struct {
	count int
	sum   float64
}

func (a accumulator) totals() Totals {
	return Totals{Count: a.count, MonthlyCost: Round(a.sum)}
}

// TotalsByUser группирует активные подписки по владельцу.
func TotalsByUser(subs []models.Subscription) map[string]Totals {
	acc := make(map[string]accumulator)
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		a := acc[s.UserID]
		a.count++
		a.sum += MonthlyEquivalent(s.Cost, s.BillingCycle)
		acc[s.UserID] = a
	}
	out := make(map[string]Totals, len(acc))
	for k, a := range acc {
		out[k] = a.totals()
	}
	return out
}

// CategoryTotals группирует активные подписки по категории.
// Подписки без категории не попадают в результат.
func CategoryTotals(subs []models.Subscription) map[int]Totals {
	acc := make(map[int]accumulator)
	for _, s := range subs {
		if !s.IsActive || s.CategoryID == nil {
			continue
		}
		a := acc[*s.CategoryID]
		a.count++
		a.sum += MonthlyEquivalent(s.Cost, s.BillingCycle)
		acc[*s.CategoryID] = a
	}
	out := make(map[int]Totals, len(acc))
	for k, a := range acc {
		out[k] = a.totals()
	}
	return out
}

// CategoryBreakdown разбивает активные подписки по категориям, по убыванию
// стоимости. При равной стоимости порядок по имени.
func CategoryBreakdown(subs []models.Subscription) []models.CategorySpend {
	type group struct {
		spend models.CategorySpend
		acc   accumulator
	}
	const uncategorized = -1

	groups := make(map[int]*group)
	order := make([]int, 0)
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		key := uncategorized
		if s.CategoryID != nil {
			key = *s.CategoryID
		}
		g, ok := groups[key]
		if !ok {
			g = &group{spend: newSpend(s)}
			groups[key] = g
			order = append(order, key)
		}
		g.acc.count++
		g.acc.sum += MonthlyEquivalent(s.Cost, s.BillingCycle)
	}

	out := make([]models.CategorySpend, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.spend.Count = g.acc.count
		g.spend.MonthlyCost = Round(g.acc.sum)
		out = append(out, g.spend)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MonthlyCost != out[j].MonthlyCost {
			return out[i].MonthlyCost > out[j].MonthlyCost
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func newSpend(s models.Subscription) models.CategorySpend {
	if s.CategoryID == nil {
		return models.CategorySpend{Name: models.UncategorizedName}
	}
	id := *s.CategoryID
	spend := models.CategorySpend{CategoryID: &id}
	if s.CategoryName != nil {
		spend.Name = *s.CategoryName
	}
	if s.CategoryColor != nil {
		spend.Color = *s.CategoryColor
	}
	if s.CategoryIcon != nil {
		spend.Icon = *s.CategoryIcon
	}
	return spend
}

// Today календарный день момента now.
func Today(now time.Time) models.Date {
	return models.DateOf(now)
}

// DaysUntil число дней до даты: 0 сегодня, отрицательное значение означает просрочку.
func DaysUntil(date, today models.Date) int {
	return int(math.Ceil(date.Sub(today.Time).Hours() / 24))
}

// UpcomingRenewals активные подписки с датой продления в окне
// [today, today+windowDays], по возрастанию даты.
func UpcomingRenewals(subs []models.Subscription, today models.Date, windowDays int) []models.Renewal {
	until := today.AddDays(windowDays)
	out := make([]models.Renewal, 0)
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		d := s.NextBillingDate
		if d.Before(today.Time) || d.After(until.Time) {
			continue
		}
		r := newRenewal(s)
		r.DaysUntil = DaysUntil(d, today)
		out = append(out, r)
	}
	sortRenewals(out)
	return out
}

// OverdueRenewals активные подписки с датой продления строго раньше today,
// по возрастанию даты.
func OverdueRenewals(subs []models.Subscription, today models.Date) []models.Renewal {
	out := make([]models.Renewal, 0)
	for _, s := range subs {
		if !s.IsActive || !s.NextBillingDate.Before(today.Time) {
			continue
		}
		r := newRenewal(s)
		r.DaysUntil = DaysUntil(s.NextBillingDate, today)
		r.DaysOverdue = -r.DaysUntil
		out = append(out, r)
	}
	sortRenewals(out)
	return out
}

func newRenewal(s models.Subscription) models.Renewal {
	return models.Renewal{
		SubscriptionID:  s.ID,
		Name:            s.Name,
		Cost:            s.Cost,
		BillingCycle:    s.BillingCycle,
		NextBillingDate: s.NextBillingDate,
		CategoryName:    s.CategoryName,
	}
}

func sortRenewals(r []models.Renewal) {
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].NextBillingDate.Before(r[j].NextBillingDate.Time)
	})
}

// AveragePerUser средний месячный расход на активного пользователя.
// Без активных пользователей возвращает ноль.
func AveragePerUser(total models.Money, activeUsers int) models.Money {
	if activeUsers <= 0 {
		return 0
	}
	return Round(float64(total.Cents()) / float64(activeUsers))
}

// Summarize собирает полную сводку расходов пользователя.
func Summarize(subs []models.Subscription, today models.Date) models.Analytics {
	return models.Analytics{
		TotalMonthlyCost:  Total(subs),
		CategoryBreakdown: CategoryBreakdown(subs),
		UpcomingRenewals:  UpcomingRenewals(subs, today, RenewalWindowDays),
		OverdueRenewals:   OverdueRenewals(subs, today),
	}
}
