package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rongwang/expense-tracker/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Align(lipgloss.Center)

	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	balanceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")).Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#475569"))
)

// RenderText renders doc for a terminal
func RenderText(doc *Document) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(doc.Title))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Generated on " + doc.GeneratedAt.Format("02 Jan 2006 15:04")))
	b.WriteString("\n\n")

	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		summaryBox("TOTAL INCOME", doc.Summary.Income, doc.CurrencySymbol, incomeStyle),
		summaryBox("TOTAL EXPENSE", doc.Summary.Expense, doc.CurrencySymbol, expenseStyle),
		summaryBox("NET BALANCE", doc.Summary.Balance, doc.CurrencySymbol, balanceStyle),
	)
	b.WriteString(summary)
	b.WriteString("\n")

	for _, section := range doc.Sections {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(section.Title))
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %-20s %-32s %16s", "DATE", "CATEGORY", "DESCRIPTION", "AMOUNT")))
		b.WriteString("\n")
		for _, r := range section.Rows {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(r.CategoryColor)).Render("●")
			amountStyle := incomeStyle
			if r.Type == models.TypeExpense {
				amountStyle = expenseStyle
			}
			fmt.Fprintf(&b, "%-12s %s %-18s %-32s %s\n",
				r.Date,
				swatch,
				truncate(r.CategoryName, 18),
				truncate(r.Description, 32),
				amountStyle.Render(fmt.Sprintf("%16s", r.SignedAmount)),
			)
		}
	}

	return b.String()
}

func summaryBox(label string, fig Figure, symbol string, style lipgloss.Style) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		subtleStyle.Render(label),
		style.Render(FormatAmount(fig.Amount, symbol)),
		subtleStyle.Render(fmt.Sprintf("%d transactions", fig.Count)),
	)
	return boxStyle.Render(content)
}
