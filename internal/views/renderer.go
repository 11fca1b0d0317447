// Package views renders the bills pages from embedded html templates.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrUnknownState is returned for a view state outside Loading/Failure/Loaded
var ErrUnknownState = errors.New("unknown view state")

type billsPageData struct {
	BillsActive bool
	Rows        []view.Row
	Message     string
}

type newBillPageData struct {
	BillsActive bool
	Form        view.NewBillForm
}

type modalData struct {
	URL   string
	Width int
}

// Renderer implements port.Renderer with html/template
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustNewRenderer is NewRenderer for wiring code and tests
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// BillsPage renders the loading, error or list page
func (r *Renderer) BillsPage(state view.State) (string, error) {
	switch s := state.(type) {
	case view.Loading:
		return r.execute("loading", billsPageData{BillsActive: true})
	case view.Failure:
		return r.execute("error", billsPageData{BillsActive: true, Message: s.Message})
	case view.Loaded:
		return r.execute("bills", billsPageData{BillsActive: true, Rows: s.Bills})
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownState, state)
	}
}

// NewBillPage renders the creation form
func (r *Renderer) NewBillPage(form view.NewBillForm) (string, error) {
	return r.execute("newbill", newBillPageData{Form: form})
}

// ReceiptModal renders the receipt preview; an empty URL renders no image
func (r *Renderer) ReceiptModal(fileURL string, width int) (string, error) {
	return r.execute("receipt-modal", modalData{URL: fileURL, Width: width})
}

// ErrorPage renders the generic error page used by the host
func (r *Renderer) ErrorPage(message string) (string, error) {
	return r.execute("error", billsPageData{Message: message})
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

var _ port.Renderer = (*Renderer)(nil)
