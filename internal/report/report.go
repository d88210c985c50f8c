// Package report turns a transaction list into a summary plus itemized document,
// and renders that document as HTML, PDF, XLSX or terminal text.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/stats"
)

// Layout selects how rows are arranged into sections
type Layout string

const (
	LayoutFlat    Layout = "flat"
	LayoutByMonth Layout = "by-month"
)

const DefaultTitle = "Transaction Report"

// Options control presentation only; they never change which rows appear
type Options struct {
	Title          string
	CurrencySymbol string
	Layout         Layout
}

// Figure is one summary value with the number of transactions behind it
type Figure struct {
	Amount decimal.Decimal
	Count  int
}

// Summary is scoped to exactly the transactions in the report
type Summary struct {
	Income  Figure
	Expense Figure
	Balance Figure
}

// Row is one itemized transaction
type Row struct {
	TransactionID int64
	Date          string
	CategoryName  string
	CategoryColor string
	CategoryIcon  string
	Description   string
	Type          models.TransactionType
	Amount        decimal.Decimal
	// SignedAmount is the formatted amount with its +/- prefix
	SignedAmount string
}

// Section is a titled sub-table
type Section struct {
	Title string
	Year  int
	Month time.Month
	Rows  []Row
}

// Document is the renderer-agnostic report
type Document struct {
	ID             string
	Title          string
	GeneratedAt    time.Time
	CurrencySymbol string
	Layout         Layout
	Summary        Summary
	Sections       []Section
}

// TransactionCount returns the number of itemized rows
func (d *Document) TransactionCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Rows)
	}
	return n
}

// Build creates a document from txs in their given order.
// It returns common.ErrEmptyReport when txs is empty.
func Build(txs []models.TransactionWithCategory, generatedAt time.Time, opts Options) (*Document, error) {
	if len(txs) == 0 {
		return nil, common.ErrEmptyReport
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Layout == "" {
		opts.Layout = LayoutFlat
	}

	s := stats.Compute(txs, generatedAt)
	doc := &Document{
		ID:             uuid.New().String(),
		Title:          opts.Title,
		GeneratedAt:    generatedAt,
		CurrencySymbol: opts.CurrencySymbol,
		Layout:         opts.Layout,
		Summary: Summary{
			Income:  Figure{Amount: s.TotalIncome, Count: s.IncomeCount},
			Expense: Figure{Amount: s.TotalExpense, Count: s.ExpenseCount},
			Balance: Figure{Amount: s.TotalBalance, Count: s.Count()},
		},
	}

	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, newRow(t, opts.CurrencySymbol))
	}

	switch opts.Layout {
	case LayoutByMonth:
		doc.Sections = groupByMonth(rows)
	case LayoutFlat:
		doc.Sections = []Section{{
			Title: fmt.Sprintf("Transaction Details (%d transactions)", len(rows)),
			Rows:  rows,
		}}
	default:
		return nil, common.NewValidationError("layout", fmt.Sprintf("unknown report layout %q", opts.Layout))
	}

	return doc, nil
}

func newRow(t models.TransactionWithCategory, symbol string) Row {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	return Row{
		TransactionID: t.ID,
		Date:          t.Date,
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
		CategoryIcon:  t.CategoryIcon,
		Description:   t.Description,
		Type:          t.Type,
		Amount:        amount,
		SignedAmount:  FormatSigned(amount, t.Type, symbol),
	}
}

// groupByMonth buckets rows by the month of their date. Buckets keep the order
// in which their first row appears; rows keep input order inside a bucket.
func groupByMonth(rows []Row) []Section {
	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	var sections []Section

	for _, r := range rows {
		k := key{}
		if d, err := time.Parse(models.DateLayout, r.Date); err == nil {
			k = key{year: d.Year(), month: d.Month()}
		}
		i, ok := index[k]
		if !ok {
			title := "Undated"
			if k.year != 0 {
				title = fmt.Sprintf("%s %d", k.month, k.year)
			}
			sections = append(sections, Section{Title: title, Year: k.year, Month: k.month})
			i = len(sections) - 1
			index[k] = i
		}
		sections[i].Rows = append(sections[i].Rows, r)
	}

	for i := range sections {
		sections[i].Title = fmt.Sprintf("%s (%d transactions)", sections[i].Title, len(sections[i].Rows))
	}
	return sections
}

// FormatSigned formats an income amount with "+" and an expense amount with "-"
func FormatSigned(amount decimal.Decimal, typ models.TransactionType, symbol string) string {
	sign := "+"
	if typ == models.TypeExpense {
		sign = "-"
	}
	return sign + symbol + groupThousands(amount.Abs().StringFixed(2))
}

// FormatAmount formats a summary figure; the sign prefix is always shown
func FormatAmount(amount decimal.Decimal, symbol string) string {
	sign := "+"
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + symbol + groupThousands(amount.Abs().StringFixed(2))
}

// groupThousands inserts commas into the integer part of a fixed-point string
func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}
