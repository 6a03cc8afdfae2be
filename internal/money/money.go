// Package money converts user-typed amounts to integer cents and back.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalid is returned when a text cannot be read as an amount.
var ErrInvalid = errors.New("invalid amount")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseCents parses an amount typed with either comma or dot as decimal separator into cents.
// Examples: "1.200,50" -> 120050, "1,200.50" -> 120050, "12,5 €" -> 1250, "-0,05" -> -5.
//
// Anything that is not a digit, separator or minus sign is dropped first. When both separators
// appear, the last one is the decimal point and the other is dropped. A single kind is always the
// decimal point, so "1.200.000" is invalid. Amounts outside the int64 cent range are invalid.
func ParseCents(text string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}

		return -1
	}, text)
	if clean == "" {
		return 0, ErrInvalid
	}

	d, err := decimal.NewFromString(normalize(clean))
	if err != nil {
		return 0, ErrInvalid
	}

	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrInvalid
	}

	return cents.IntPart(), nil
}

// normalize rewrites clean (digits, separators and minus only) so that the only remaining
// separator is a dot used as decimal point. More than one decimal point is left for the decimal
// parser to reject.
func normalize(clean string) string {
	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(clean, ".", ""), ",", ".", 1)
		}

		return strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		return strings.ReplaceAll(clean, ",", ".")
	}

	return clean
}

// FormatCents renders cents with two decimals and a comma separator: 123456 -> "1234,56".
func FormatCents(cents int64) string {
	sign := ""

	u := uint64(cents)
	if cents < 0 {
		sign = "-"
		u = uint64(-(cents + 1)) + 1
	}

	frac := strconv.FormatUint(u%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}

	return sign + strconv.FormatUint(u/100, 10) + "," + frac
}

// FormatCentsPtr is FormatCents with nil read as zero.
func FormatCentsPtr(cents *int64) string {
	if cents == nil {
		return FormatCents(0)
	}

	return FormatCents(*cents)
}
