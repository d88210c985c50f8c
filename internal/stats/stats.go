// Package stats derives balance and income/expense totals from a list of transactions.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rongwang/expense-tracker/internal/models"
)

// Stats holds the aggregate figures for one transaction list.
// All values are exact decimals; round only when presenting them.
type Stats struct {
	TotalBalance   decimal.Decimal
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	MonthlyIncome  decimal.Decimal
	MonthlyExpense decimal.Decimal

	IncomeCount  int
	ExpenseCount int
	// Skipped counts transactions whose amount or date could not be parsed.
	Skipped int
}

// Count returns the number of transactions that contributed to the totals
func (s Stats) Count() int {
	return s.IncomeCount + s.ExpenseCount
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// Engine computes stats relative to its clock's "now"
type Engine struct {
	Clock Clock
}

// NewEngine creates an engine reading the given clock
func NewEngine(clock Clock) *Engine {
	return &Engine{Clock: clock}
}

// Compute aggregates txs against the engine's current month
func (e *Engine) Compute(txs []models.TransactionWithCategory) Stats {
	return Compute(txs, e.Clock.Now())
}

// Compute aggregates txs. The monthly figures cover transactions whose date falls
// in the calendar month and year of now.
func Compute(txs []models.TransactionWithCategory, now time.Time) Stats {
	s := Stats{
		TotalBalance:   decimal.Zero,
		TotalIncome:    decimal.Zero,
		TotalExpense:   decimal.Zero,
		MonthlyIncome:  decimal.Zero,
		MonthlyExpense: decimal.Zero,
	}
	year, month, _ := now.Date()

	for _, t := range txs {
		amount, err := decimal.NewFromString(t.Amount)
		if err != nil || amount.IsNegative() {
			s.Skipped++
			continue
		}
		date, err := time.Parse(models.DateLayout, t.Date)
		if err != nil {
			s.Skipped++
			continue
		}
		currentMonth := date.Year() == year && date.Month() == month

		switch t.Type {
		case models.TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(amount)
			s.IncomeCount++
			if currentMonth {
				s.MonthlyIncome = s.MonthlyIncome.Add(amount)
			}
		case models.TypeExpense:
			s.TotalExpense = s.TotalExpense.Add(amount)
			s.ExpenseCount++
			if currentMonth {
				s.MonthlyExpense = s.MonthlyExpense.Add(amount)
			}
		default:
			s.Skipped++
		}
	}

	s.TotalBalance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// Response renders s with two decimal places
func (s Stats) Response() models.StatsResponse {
	return models.StatsResponse{
		Status:         "success",
		TotalBalance:   s.TotalBalance.StringFixed(2),
		TotalIncome:    s.TotalIncome.StringFixed(2),
		TotalExpense:   s.TotalExpense.StringFixed(2),
		MonthlyIncome:  s.MonthlyIncome.StringFixed(2),
		MonthlyExpense: s.MonthlyExpense.StringFixed(2),
	}
}
