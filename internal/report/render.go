package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rongwang/expense-tracker/internal/common"
)

// Format is an output encoding for a Document
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

// ParseFormat accepts a case-insensitive format name; empty means PDF
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatText, "txt":
		return FormatText, nil
	}
	return "", common.NewValidationError("format", fmt.Sprintf("unsupported report format %q", s))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Filename builds a download name from the document title and generation time
func Filename(doc *Document, f Format) string {
	slug := strings.ToLower(strings.Join(strings.Fields(doc.Title), "-"))
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, slug)
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("%s-%s.%s", slug, doc.GeneratedAt.Format("20060102-150405"), f.Extension())
}

// Render writes doc to w in the given format
func Render(w io.Writer, doc *Document, f Format) error {
	switch f {
	case FormatHTML:
		return RenderHTML(w, doc)
	case FormatPDF:
		return RenderPDF(w, doc)
	case FormatXLSX:
		return RenderXLSX(w, doc)
	case FormatText:
		_, err := io.WriteString(w, RenderText(doc))
		return err
	}
	return common.NewValidationError("format", fmt.Sprintf("unsupported report format %q", f))
}

// Export is a rendered document ready to be saved or shared
type Export struct {
	ReportID    string
	Filename    string
	ContentType string
	Data        []byte
}

// NewExport renders doc into memory
func NewExport(doc *Document, f Format) (*Export, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc, f); err != nil {
		return nil, fmt.Errorf("render %s report: %w", f, err)
	}
	return &Export{
		ReportID:    doc.ID,
		Filename:    Filename(doc, f),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
