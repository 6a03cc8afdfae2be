package bucket_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/facturas/internal/bucket"
)

func TestResolve(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		madrid = time.FixedZone("CET", 3600)
	}

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, madrid)
	exifAt := func(ts time.Time) bucket.Lookup {
		return func() (time.Time, bool) { return ts, true }
	}
	noExif := func() (time.Time, bool) { return time.Time{}, false }

	type testCase struct {
		name      string
		explicit  string
		lookup    bucket.Lookup
		wantYear  string
		wantMonth string
		wantDate  string
	}

	tests := []testCase{
		{
			name:      "ExplicitWinsOverExif",
			explicit:  "2026-03-15",
			lookup:    exifAt(time.Date(2025, 7, 1, 10, 0, 0, 0, madrid)),
			wantYear:  "2026",
			wantMonth: "03",
			wantDate:  "2026-03-15",
		},
		{
			name:      "ExifWhenNoExplicit",
			lookup:    exifAt(time.Date(2025, 7, 1, 10, 0, 0, 0, madrid)),
			wantYear:  "2025",
			wantMonth: "07",
			wantDate:  "2025-07-01",
		},
		{
			name:      "NowWhenNothing",
			lookup:    noExif,
			wantYear:  "2026",
			wantMonth: "10",
			wantDate:  "2026-10-17",
		},
		{
			name:      "NilLookup",
			wantYear:  "2026",
			wantMonth: "10",
			wantDate:  "2026-10-17",
		},
		{
			name:      "UnparseableExplicitFallsBackToExif",
			explicit:  "not a date",
			lookup:    exifAt(time.Date(2024, 1, 31, 23, 59, 0, 0, madrid)),
			wantYear:  "2024",
			wantMonth: "01",
			wantDate:  "2024-01-31",
		},
		{
			name:      "CalendarInvalidExplicit",
			explicit:  "2026-02-30",
			lookup:    noExif,
			wantYear:  "2026",
			wantMonth: "10",
			wantDate:  "2026-10-17",
		},
		{
			name:      "YearMonthOnly",
			explicit:  "2025-12",
			wantYear:  "2025",
			wantMonth: "12",
			wantDate:  "2025-12-01",
		},
		{
			name:      "SpanishDate",
			explicit:  "05/02/2024",
			wantYear:  "2024",
			wantMonth: "02",
			wantDate:  "2024-02-05",
		},
		{
			name:      "SpanishShortYear",
			explicit:  "09/11/25",
			wantYear:  "2025",
			wantMonth: "11",
			wantDate:  "2025-11-09",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bucket.Resolve(tt.explicit, tt.lookup, now)

			assert.Equal(t, tt.wantYear, got.Year)
			assert.Equal(t, tt.wantMonth, got.Month)
			assert.Equal(t, tt.wantDate, got.DateString())
		})
	}
}

func TestResolve_UsesLocalCalendarFields(t *testing.T) {
	tz := time.FixedZone("UTC+2", 2*3600)
	// 00:30 local on the 1st is still the previous month in UTC.
	ts := time.Date(2025, 8, 1, 0, 30, 0, 0, tz)

	got := bucket.Resolve("", func() (time.Time, bool) { return ts, true }, time.Now())

	assert.Equal(t, "2025", got.Year)
	assert.Equal(t, "08", got.Month)
}

func TestNormalizeMonth(t *testing.T) {
	for in, want := range map[string]string{"1": "01", "01": "01", "9": "09", "12": "12"} {
		got, ok := bucket.NormalizeMonth(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "0", "13", "001", "ab", "-1"} {
		_, ok := bucket.NormalizeMonth(in)
		assert.False(t, ok, in)
	}
}

func TestValidYear(t *testing.T) {
	assert.True(t, bucket.ValidYear("2026"))
	assert.False(t, bucket.ValidYear("26"))
	assert.False(t, bucket.ValidYear("20x6"))
	assert.False(t, bucket.ValidYear(""))
}

func TestMonths(t *testing.T) {
	months := bucket.Months()

	assert.Len(t, months, 12)
	assert.Equal(t, "01", months[0])
	assert.Equal(t, "12", months[11])
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Enero", bucket.MonthName("01"))
	assert.Equal(t, "Septiembre", bucket.MonthName("9"))
	assert.Equal(t, "Diciembre", bucket.MonthName("12"))
	assert.Equal(t, "13", bucket.MonthName("13"))
}
