package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/rongwang/expense-tracker/internal/models"
)

// core PDF fonts are cp1252; symbols outside it get a text stand-in
var pdfSymbolFallback = map[string]string{
	"₹": "Rs. ",
	"¥": "JPY ",
	"₩": "KRW ",
}

var columnWidths = []float64{28, 45, 77, 40}

// RenderPDF writes doc as an A4 PDF
func RenderPDF(w io.Writer, doc *Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("expense-tracker", true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	symbol := doc.CurrencySymbol
	if s, ok := pdfSymbolFallback[symbol]; ok {
		symbol = s
	}

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 6, "Generated on "+doc.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	boxes := []struct {
		label   string
		fig     Figure
		r, g, b int
	}{
		{"TOTAL INCOME", doc.Summary.Income, 209, 250, 229},
		{"TOTAL EXPENSE", doc.Summary.Expense, 254, 226, 226},
		{"NET BALANCE", doc.Summary.Balance, 219, 234, 254},
	}
	boxWidth := 60.0
	top := pdf.GetY()
	for i, box := range boxes {
		x := 15 + float64(i)*(boxWidth+3)
		pdf.SetFillColor(box.r, box.g, box.b)
		pdf.Rect(x, top, boxWidth, 24, "F")
		pdf.SetTextColor(15, 23, 42)
		pdf.SetXY(x, top+2)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(boxWidth, 5, box.label, "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(boxWidth, 8, tr(FormatAmount(box.fig.Amount, symbol)), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(boxWidth, 5, fmt.Sprintf("%d transactions", box.fig.Count), "", 0, "C", false, 0, "")
	}
	pdf.SetXY(15, top+30)

	for _, section := range doc.Sections {
		pdf.SetTextColor(15, 23, 42)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(section.Title), "", 1, "L", false, 0, "")

		pdf.SetFillColor(241, 245, 249)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetTextColor(71, 85, 105)
		for i, h := range []string{"DATE", "CATEGORY", "DESCRIPTION", "AMOUNT"} {
			align := "L"
			if i == 3 {
				align = "R"
			}
			pdf.CellFormat(columnWidths[i], 7, h, "", 0, align, true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, row := range section.Rows {
			writePDFRow(pdf, tr, row, symbol)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(148, 163, 184)
	pdf.CellFormat(0, 10, "This report is generated automatically from your transaction records.", "T", 1, "C", false, 0, "")

	return pdf.Output(w)
}

func writePDFRow(pdf *fpdf.Fpdf, tr func(string) string, row Row, symbol string) {
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+7 > pageHeight-bottom {
		pdf.AddPage()
	}

	pdf.SetTextColor(51, 65, 85)
	pdf.CellFormat(columnWidths[0], 7, row.Date, "B", 0, "L", false, 0, "")

	x, y := pdf.GetXY()
	r, g, b := hexToRGB(row.CategoryColor)
	pdf.SetFillColor(r, g, b)
	pdf.Circle(x+2, y+3.5, 1.2, "F")
	pdf.SetX(x + 4)
	pdf.CellFormat(columnWidths[1]-4, 7, tr(truncate(row.CategoryName, 24)), "B", 0, "L", false, 0, "")
	pdf.CellFormat(columnWidths[2], 7, tr(truncate(row.Description, 45)), "B", 0, "L", false, 0, "")

	if row.Type == models.TypeIncome {
		pdf.SetTextColor(16, 185, 129)
	} else {
		pdf.SetTextColor(239, 68, 68)
	}
	// reformatted because the PDF symbol may differ from the document's
	pdf.CellFormat(columnWidths[3], 7, tr(FormatSigned(row.Amount, row.Type, symbol)), "B", 1, "R", false, 0, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// hexToRGB parses #RRGGBB, falling back to slate grey
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 148, 163, 184
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 148, 163, 184
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
