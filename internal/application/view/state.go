// Package view holds the page models the controllers hand to the renderer.
package view

import "github.com/garyjia/billed/internal/domain/entity"

// State is what the bills page currently shows. It is exactly one of
// Loading, Failure or Loaded; the unexported marker keeps the set closed.
type State interface {
	isState()
}

// Loading is shown while the bill list fetch is outstanding
type Loading struct{}

// Failure carries the store's error message verbatim
type Failure struct {
	Message string
}

// Loaded carries the bills in display order
type Loaded struct {
	Bills []Row
}

func (Loading) isState() {}
func (Failure) isState() {}
func (Loaded) isState()  {}

// Row is one bill prepared for display. Bill is never mutated by formatting.
type Row struct {
	Bill        *entity.Bill
	DisplayDate string
	StatusLabel string
}

// NewRow formats a bill for display, falling back to the raw date string
// when it does not parse.
func NewRow(b *entity.Bill) Row {
	date, err := entity.FormatDate(b.Date)
	if err != nil {
		date = b.Date
	}
	return Row{
		Bill:        b,
		DisplayDate: date,
		StatusLabel: entity.FormatStatus(b.Status),
	}
}

// NewBillForm is the state of the creation form as rendered
type NewBillForm struct {
	Types           []string
	Fields          FormFields
	FileName        string
	ValidationError string
}

// FormFields are the raw values typed into the creation form
type FormFields struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
}
