// Package validate holds the field checks applied to request payloads before
// anything is written. All functions are pure.
package validate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/models"
)

// Required fails with a validation error naming the missing fields when any
// value is empty. Whitespace counts as present; Label applies its own rule.
func Required(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if f.Value == "" {
			missing = append(missing, f.Name)
		}
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return apperr.Validation(fmt.Sprintf("%s is required", capitalize(missing[0])))
	default:
		return apperr.Validation(fmt.Sprintf("%s and %s are required",
			capitalize(strings.Join(missing[:len(missing)-1], ", ")), missing[len(missing)-1]))
	}
}

// Field is a named request value.
type Field struct {
	Name  string
	Value string
}

// Label checks that label is non-empty, at most maxLen characters, and made of
// letters and digits once spaces are removed.
func Label(label string, maxLen int) error {
	if strings.TrimSpace(label) == "" {
		return apperr.Validation("Label is required")
	}
	if utf8.RuneCountInString(label) > maxLen {
		return apperr.Validation(fmt.Sprintf("Label must be at most %d characters", maxLen))
	}
	if !IsAlphanumeric(strings.ReplaceAll(label, " ", "")) {
		return apperr.Validation("Label should contain only alphanumeric characters")
	}
	return nil
}

// IsAlphanumeric reports whether s is non-empty and consists only of letters and digits.
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// MaxLen fails when value is longer than max characters.
func MaxLen(name, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return apperr.Validation(fmt.Sprintf("%s must be at most %d characters", capitalize(name), max))
	}
	return nil
}

// Price parses raw as a fixed-point amount rounded to four decimal places.
// Non-numeric input is a format error; zero or negative amounts are range errors.
func Price(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, apperr.Format("Invalid price format")
	}
	p = p.Round(models.PriceDecimalPlaces)
	if !p.IsPositive() {
		return decimal.Decimal{}, apperr.Range("Price should be a positive number")
	}
	intDigits := len(p.Truncate(0).String())
	if intDigits > models.PriceMaxDigits-models.PriceDecimalPlaces {
		return decimal.Decimal{}, apperr.Validation(fmt.Sprintf(
			"Price must have at most %d digits before the decimal point",
			models.PriceMaxDigits-models.PriceDecimalPlaces))
	}
	return p, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
