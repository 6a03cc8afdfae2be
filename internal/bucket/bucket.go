// Package bucket decides which year/month partition a record belongs to.
package bucket

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lookup returns a timestamp embedded in the uploaded file, if any.
type Lookup func() (time.Time, bool)

// Bucket is a resolved date and its partition keys.
type Bucket struct {
	Date  time.Time
	Year  string // 4 digits
	Month string // "01".."12"
}

// DateString returns the canonical YYYY-MM-DD form of the resolved date.
func (b Bucket) DateString() string {
	return b.Date.Format(time.DateOnly)
}

// Resolve picks the bucket for a record. Priority: explicit date text, then the embedded
// timestamp, then now. A nil lookup means there is no embedded timestamp.
func Resolve(explicit string, lookup Lookup, now time.Time) Bucket {
	if d, ok := ParseDate(explicit, now.Location()); ok {
		return New(d)
	}

	if lookup != nil {
		if ts, ok := lookup(); ok && !ts.IsZero() {
			return New(ts)
		}
	}

	return New(now)
}

// New builds the bucket for t using t's own calendar fields.
func New(t time.Time) Bucket {
	return Bucket{
		Date:  t,
		Year:  fmt.Sprintf("%04d", t.Year()),
		Month: fmt.Sprintf("%02d", int(t.Month())),
	}
}

// dateLayouts are tried in order; "02/01/06" must come after "02/01/2006" so that a
// four digit year is never read as two.
var dateLayouts = []string{
	time.DateOnly,
	"2006-01",
	"02/01/2006",
	"02/01/06",
}

// ParseDate reads the user date formats accepted on upload and edit. Two digit years are
// 2000+YY. Calendar-invalid dates such as 2026-02-30 are rejected.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		if len(s) != len(layout) {
			continue
		}

		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}

		if layout == "02/01/06" && t.Year() < 2000 {
			t = t.AddDate(100, 0, 0)
		}

		return t, true
	}

	return time.Time{}, false
}

// ValidYear reports whether s is a four digit year.
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// NormalizeMonth accepts "1".."12" or "01".."12" and returns the two digit key.
func NormalizeMonth(s string) (string, bool) {
	s = strings.TrimSpace(s)

	m, err := strconv.Atoi(s)
	if err != nil || len(s) > 2 || m < 1 || m > 12 {
		return "", false
	}

	return fmt.Sprintf("%02d", m), true
}

// Months lists the twelve month keys in calendar order.
func Months() []string {
	months := make([]string, 12)
	for i := range months {
		months[i] = fmt.Sprintf("%02d", i+1)
	}

	return months
}

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of a month key, or the key itself when it is not one.
func MonthName(key string) string {
	m, ok := NormalizeMonth(key)
	if !ok {
		return key
	}

	n, _ := strconv.Atoi(m)

	return monthNames[n-1]
}
