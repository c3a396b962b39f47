package bankcsv

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// parseAmount reads a formatted amount. With decimalComma, "1.234,56" is
// 1234.56; otherwise "1,234.56" is. Currency codes and spaces are ignored.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
