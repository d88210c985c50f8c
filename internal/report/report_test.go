package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
)

var generatedAt = time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)

func row(id int64, amount string, typ models.TransactionType, date, category, color string) models.TransactionWithCategory {
	return models.TransactionWithCategory{
		Transaction: models.Transaction{
			ID:          id,
			Amount:      amount,
			Type:        typ,
			Date:        date,
			Description: "tx " + category,
		},
		CategoryName:  category,
		CategoryColor: color,
	}
}

func sample() []models.TransactionWithCategory {
	return []models.TransactionWithCategory{
		row(5, "40.00", models.TypeExpense, "2024-02-03", "Food", "#FF6B6B"),
		row(4, "1500.5", models.TypeIncome, "2024-01-20", "Salary", "#00B894"),
		row(3, "12.25", models.TypeExpense, "2024-02-01", "Transport", "#4ECDC4"),
		row(2, "100.00", models.TypeIncome, "2024-01-15", "Business", "#00CEC9"),
		row(1, "9.99", models.TypeExpense, "2023-12-31", "Bills", "#FFEAA7"),
	}
}

func TestBuildEmpty(t *testing.T) {
	doc, err := Build(nil, generatedAt, Options{})
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, common.ErrEmptyReport)
}

func TestBuildFlat(t *testing.T) {
	txs := sample()
	doc, err := Build(txs, generatedAt, Options{CurrencySymbol: "$"})
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, doc.Title)
	assert.NotEmpty(t, doc.ID)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Transaction Details (5 transactions)", doc.Sections[0].Title)

	for i, r := range doc.Sections[0].Rows {
		assert.Equal(t, txs[i].ID, r.TransactionID, "flat layout keeps input order")
	}

	assert.Equal(t, "-$40.00", doc.Sections[0].Rows[0].SignedAmount)
	assert.Equal(t, "+$1,500.50", doc.Sections[0].Rows[1].SignedAmount)

	assert.True(t, doc.Summary.Income.Amount.Equal(decimal.RequireFromString("1600.5")))
	assert.Equal(t, 2, doc.Summary.Income.Count)
	assert.True(t, doc.Summary.Expense.Amount.Equal(decimal.RequireFromString("62.24")))
	assert.Equal(t, 3, doc.Summary.Expense.Count)
	assert.True(t, doc.Summary.Balance.Amount.Equal(decimal.RequireFromString("1538.26")))
	assert.Equal(t, 5, doc.Summary.Balance.Count)
}

func TestBuildByMonth(t *testing.T) {
	txs := sample()
	doc, err := Build(txs, generatedAt, Options{Layout: LayoutByMonth})
	require.NoError(t, err)

	// buckets follow first appearance: Feb (row 0), Jan (row 1), Dec (row 4)
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "February 2024 (2 transactions)", doc.Sections[0].Title)
	assert.Equal(t, "January 2024 (2 transactions)", doc.Sections[1].Title)
	assert.Equal(t, "December 2023 (1 transactions)", doc.Sections[2].Title)

	seen := make(map[int64]int)
	for _, s := range doc.Sections {
		for _, r := range s.Rows {
			seen[r.TransactionID]++
			d, err := time.Parse(models.DateLayout, r.Date)
			require.NoError(t, err)
			assert.Equal(t, s.Year, d.Year())
			assert.Equal(t, s.Month, d.Month())
		}
	}
	assert.Len(t, seen, len(txs))
	for id, n := range seen {
		assert.Equal(t, 1, n, "transaction %d appears once", id)
	}
	assert.Equal(t, len(txs), doc.TransactionCount())

	// input order within a bucket
	assert.Equal(t, int64(5), doc.Sections[0].Rows[0].TransactionID)
	assert.Equal(t, int64(3), doc.Sections[0].Rows[1].TransactionID)
}

func TestBuildUnknownLayout(t *testing.T) {
	_, err := Build(sample(), generatedAt, Options{Layout: "weekly"})
	assert.True(t, common.IsValidation(err))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "+₹0.00"},
		{"12.345", "+₹12.35"},
		{"999.999", "+₹1,000.00"},
		{"1234567.8", "+₹1,234,567.80"},
		{"-60", "-₹60.00"},
		{"-1000", "-₹1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in), "₹"))
		})
	}
}

func TestRenderHTML(t *testing.T) {
	doc, err := Build(sample(), generatedAt, Options{CurrencySymbol: "$", Layout: LayoutByMonth})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, doc))
	html := buf.String()

	assert.Contains(t, html, "<h1>Transaction Report</h1>")
	assert.Contains(t, html, "Generated on 10 Feb 2024 09:30")
	// html/template escapes '+' in text
	assert.Contains(t, html, "&#43;$1,600.50")
	assert.Contains(t, html, "background-color: #FF6B6B")
	assert.Contains(t, html, "February 2024 (2 transactions)")
	assert.Equal(t, 5, strings.Count(html, `<td class="amount`))
}

func TestRenderPDF(t *testing.T) {
	doc, err := Build(sample(), generatedAt, Options{CurrencySymbol: "₹"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderXLSX(t *testing.T) {
	doc, err := Build(sample(), generatedAt, Options{CurrencySymbol: "$"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderXLSX(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, "Transaction Report", rows[0][0])
	assert.Equal(t, []string{"Total Income", "+$1,600.50", "2 transactions"}, rows[3])

	var amounts []string
	for _, r := range rows {
		if len(r) == 4 && r[0] != "Date" {
			amounts = append(amounts, r[3])
		}
	}
	assert.Equal(t, []string{"-$40.00", "+$1,500.50", "-$12.25", "+$100.00", "-$9.99"}, amounts)
}

func TestRenderText(t *testing.T) {
	doc, err := Build(sample(), generatedAt, Options{CurrencySymbol: "$"})
	require.NoError(t, err)

	out := RenderText(doc)
	assert.Contains(t, out, "Transaction Report")
	assert.Contains(t, out, "TOTAL INCOME")
	assert.Contains(t, out, "+$1,538.26")
	assert.Contains(t, out, "2023-12-31")
}

func TestExport(t *testing.T) {
	doc, err := Build(sample(), generatedAt, Options{Title: "January Spending!"})
	require.NoError(t, err)

	exp, err := NewExport(doc, FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "january-spending-20240210-093000.html", exp.Filename)
	assert.Equal(t, "text/html; charset=utf-8", exp.ContentType)
	assert.Equal(t, doc.ID, exp.ReportID)
	assert.NotEmpty(t, exp.Data)

	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.True(t, common.IsValidation(err))
}
