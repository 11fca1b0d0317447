package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrFileReferenceMismatch is returned when only one of FileURL/FileName is set
	ErrFileReferenceMismatch = errors.New("fileUrl and fileName must be set together")

	// ErrInvalidDate is returned when Date is not a YYYY-MM-DD calendar date
	ErrInvalidDate = errors.New("invalid bill date")

	// ErrInvalidStatus is returned for a status outside pending/accepted/refused
	ErrInvalidStatus = errors.New("invalid bill status")

	// ErrMissingField is returned when a mandatory field is empty
	ErrMissingField = errors.New("missing required field")

	// ErrBillNotFound is returned when no bill has the requested id
	ErrBillNotFound = errors.New("bill not found")
)

var validStatuses = map[string]bool{
	StatusPending:  true,
	StatusAccepted: true,
	StatusRefused:  true,
}

// Bill represents a single expense entry with its approval status and receipt reference
type Bill struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	Amount       int    `json:"amount"`
	VAT          string `json:"vat,omitempty"`
	Pct          int    `json:"pct,omitempty"`
	Commentary   string `json:"commentary,omitempty"`
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	CommentAdmin string `json:"commentAdmin"`
}

// ParsedDate parses Date using DateLayout
func (b *Bill) ParsedDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(b.Date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, b.Date)
	}
	return t, nil
}

// HasFile returns true if the bill references a stored receipt
func (b *Bill) HasFile() bool {
	return b.FileURL != "" && b.FileName != ""
}

// Validate checks the invariants a bill must hold before it is persisted
func (b *Bill) Validate() error {
	if b.Email == "" {
		return fmt.Errorf("%w: email", ErrMissingField)
	}
	if b.Type == "" {
		return fmt.Errorf("%w: type", ErrMissingField)
	}
	if _, err := b.ParsedDate(); err != nil {
		return err
	}
	if (b.FileURL == "") != (b.FileName == "") {
		return ErrFileReferenceMismatch
	}
	if !validStatuses[b.Status] {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, b.Status)
	}
	return nil
}

// Clone returns a shallow copy of the bill
func (b *Bill) Clone() *Bill {
	c := *b
	return &c
}

// SortByDateDesc orders bills most recent first. Equal dates keep their
// relative order; dates that do not parse sink after every valid one.
func SortByDateDesc(bills []*Bill) []*Bill {
	ordered := make([]*Bill, len(bills))
	copy(ordered, bills)

	type key struct {
		t  time.Time
		ok bool
	}
	keys := make(map[*Bill]key, len(ordered))
	for _, b := range ordered {
		t, err := b.ParsedDate()
		keys[b] = key{t: t, ok: err == nil}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		ki, kj := keys[ordered[i]], keys[ordered[j]]
		if ki.ok != kj.ok {
			return ki.ok
		}
		return ki.t.After(kj.t)
	})
	return ordered
}
