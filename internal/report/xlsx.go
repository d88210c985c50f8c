package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// RenderXLSX writes doc as a single-sheet workbook
func RenderXLSX(w io.Writer, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, row: 1, swatches: make(map[string]int)}
	sw.set("A", doc.Title, title)
	sw.next()
	sw.set("A", "Generated on "+doc.GeneratedAt.Format("02 Jan 2006 15:04"), 0)
	sw.next()
	sw.next()

	for _, s := range []struct {
		label string
		fig   Figure
	}{
		{"Total Income", doc.Summary.Income},
		{"Total Expense", doc.Summary.Expense},
		{"Net Balance", doc.Summary.Balance},
	} {
		sw.set("A", s.label, bold)
		sw.set("B", FormatAmount(s.fig.Amount, doc.CurrencySymbol), 0)
		sw.set("C", fmt.Sprintf("%d transactions", s.fig.Count), 0)
		sw.next()
	}

	for _, section := range doc.Sections {
		sw.next()
		sw.set("A", section.Title, bold)
		sw.next()
		for i, h := range []string{"Date", "Category", "Description", "Amount"} {
			sw.set(string(rune('A'+i)), h, bold)
		}
		sw.next()
		for _, r := range section.Rows {
			sw.set("A", r.Date, 0)
			sw.set("B", r.CategoryName, sw.swatch(r.CategoryColor))
			sw.set("C", r.Description, 0)
			sw.set("D", r.SignedAmount, 0)
			sw.next()
		}
	}

	if sw.err != nil {
		return sw.err
	}
	if err := f.SetColWidth(sheetName, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", "B", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "C", "C", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "D", "D", 18); err != nil {
		return err
	}

	return f.Write(w)
}

// sheetWriter keeps the first error so callers can write rows without checking each cell
type sheetWriter struct {
	f        *excelize.File
	row      int
	swatches map[string]int
	err      error
}

func (s *sheetWriter) next() { s.row++ }

func (s *sheetWriter) set(col string, value any, style int) {
	if s.err != nil {
		return
	}
	cell := fmt.Sprintf("%s%d", col, s.row)
	if s.err = s.f.SetCellValue(sheetName, cell, value); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(sheetName, cell, cell, style)
	}
}

// swatch returns a left-border style in the category colour
func (s *sheetWriter) swatch(color string) int {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return 0
	}
	if id, ok := s.swatches[hex]; ok {
		return id
	}
	id, err := s.f.NewStyle(&excelize.Style{
		Border: []excelize.Border{{Type: "left", Color: hex, Style: 5}},
	})
	if err != nil {
		return 0
	}
	s.swatches[hex] = id
	return id
}
