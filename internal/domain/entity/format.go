package entity

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// frenchShortMonths holds the French abbreviated month names, January first
var frenchShortMonths = [12]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var monthCaser = cases.Title(language.French)

// FormatDate renders a stored YYYY-MM-DD date as "4 Avr. 04".
// The bill itself is not modified.
func FormatDate(date string) (string, error) {
	b := Bill{Date: date}
	t, err := b.ParsedDate()
	if err != nil {
		return "", err
	}

	month := []rune(monthCaser.String(frenchShortMonths[t.Month()-1]))
	if len(month) > 3 {
		month = month[:3]
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), string(month), t.Year()%100), nil
}

// FormatStatus returns the display label of a bill status
func FormatStatus(status string) string {
	switch status {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return status
	}
}
