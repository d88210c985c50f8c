package report

import (
	"embed"
	"html/template"
	"io"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// RenderHTML writes doc as a standalone HTML page
func RenderHTML(w io.Writer, doc *Document) error {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"amount": func(d decimal.Decimal) string {
			return FormatAmount(d, doc.CurrencySymbol)
		},
	}).ParseFS(templatesFS, "templates/report.html.tmpl")
	if err != nil {
		return err
	}
	return tmpl.Execute(w, doc)
}
