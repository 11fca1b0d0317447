package entity

import (
	"errors"
	"testing"
)

func validBill() *Bill {
	return &Bill{
		Email:    "johndoe@email.com",
		Type:     TypeHotel,
		Name:     "John Doe",
		Date:     "2004-04-04",
		Amount:   400,
		FileURL:  "/files/receipt.jpeg",
		FileName: "Hôtel.jpeg",
		Status:   StatusPending,
	}
}

func TestBill_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Bill)
		wantErr error
	}{
		{"valid bill", func(b *Bill) {}, nil},
		{"valid bill without file", func(b *Bill) { b.FileURL, b.FileName = "", "" }, nil},
		{"file url without name", func(b *Bill) { b.FileName = "" }, ErrFileReferenceMismatch},
		{"file name without url", func(b *Bill) { b.FileURL = "" }, ErrFileReferenceMismatch},
		{"invalid date", func(b *Bill) { b.Date = "2004-13-40" }, ErrInvalidDate},
		{"empty date", func(b *Bill) { b.Date = "" }, ErrInvalidDate},
		{"unknown status", func(b *Bill) { b.Status = "archived" }, ErrInvalidStatus},
		{"missing email", func(b *Bill) { b.Email = "" }, ErrMissingField},
		{"missing type", func(b *Bill) { b.Type = "" }, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBill()
			tt.mutate(b)
			err := b.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSortByDateDesc(t *testing.T) {
	bills := []*Bill{
		{ID: "a", Date: "2001-01-01"},
		{ID: "b", Date: "2004-04-04"},
		{ID: "c", Date: "2003-03-03"},
		{ID: "d", Date: "2002-02-02"},
	}

	ordered := SortByDateDesc(bills)

	want := []string{"b", "c", "d", "a"}
	for i, id := range want {
		if ordered[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, ordered[i].ID, id)
		}
	}
	if bills[0].ID != "a" {
		t.Error("SortByDateDesc() must not reorder its input")
	}
}

func TestSortByDateDesc_StableOnEqualDates(t *testing.T) {
	bills := []*Bill{
		{ID: "first", Date: "2020-05-01"},
		{ID: "newest", Date: "2021-01-01"},
		{ID: "second", Date: "2020-05-01"},
		{ID: "third", Date: "2020-05-01"},
	}

	ordered := SortByDateDesc(bills)

	want := []string{"newest", "first", "second", "third"}
	for i, id := range want {
		if ordered[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, ordered[i].ID, id)
		}
	}
}

func TestSortByDateDesc_InvalidDatesLast(t *testing.T) {
	bills := []*Bill{
		{ID: "broken", Date: "not a date"},
		{ID: "old", Date: "1999-12-31"},
		{ID: "empty", Date: ""},
		{ID: "new", Date: "2022-06-15"},
	}

	ordered := SortByDateDesc(bills)

	want := []string{"new", "old", "broken", "empty"}
	for i, id := range want {
		if ordered[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, ordered[i].ID, id)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2004-04-04", "4 Avr. 04"},
		{"2021-02-15", "15 Fév. 21"},
		{"1999-08-01", "1 Aoû. 99"},
		{"2010-12-31", "31 Déc. 10"},
		{"2022-05-09", "9 Mai. 22"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := FormatDate(tt.date)
			if err != nil {
				t.Fatalf("FormatDate() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatDate(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}

	if _, err := FormatDate("04/04/2004"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("FormatDate() error = %v, want ErrInvalidDate", err)
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{StatusPending, "En attente"},
		{StatusAccepted, "Accepté"},
		{StatusRefused, "Refusé"},
		{"other", "other"},
	}

	for _, tt := range tests {
		if got := FormatStatus(tt.status); got != tt.want {
			t.Errorf("FormatStatus(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestSession_Owns(t *testing.T) {
	bill := &Bill{Email: "a@b.c"}

	if !(&Session{Type: UserTypeAdmin, Email: "x@y.z"}).Owns(bill) {
		t.Error("admin should see every bill")
	}
	if !(&Session{Type: UserTypeEmployee, Email: "a@b.c"}).Owns(bill) {
		t.Error("employee should see own bill")
	}
	if (&Session{Type: UserTypeEmployee, Email: "x@y.z"}).Owns(bill) {
		t.Error("employee should not see another employee's bill")
	}
	var s *Session
	if s.Owns(bill) {
		t.Error("nil session should see nothing")
	}
}
