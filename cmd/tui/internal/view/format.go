package view

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a money amount with thousands separators and two decimals.
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func FormatMoney(d decimal.Decimal, currency string) string {
	return FormatAmount(d) + " " + currency
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatOptionalDate renders a nil date as a dash.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return FormatDate(*t)
}

// parseOptionalDate accepts an empty string as no date.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
