package datecalc

import (
	"fmt"
	"time"
)

const (
	// LayoutISO is the wire format of a Date (form controls send YYYY-MM-DD).
	LayoutISO = "2006-01-02"

	// LayoutDisplay is the human format used in responses (e.g. "07 Oct 2024").
	LayoutDisplay = "02 Jan 2006"

	secondsPerDay = 24 * 60 * 60
)

// Date is a calendar date without time-of-day or timezone.
// The zero value is 0000-00-00 and reports IsZero() == true.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of builds a Date, normalising out-of-range values the way time.Date does
// (e.g. Of(2024, 2, 30) is 2024-03-01). Use Parse for strict input.
func Of(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime extracts the calendar date of t in t's own location.
// "Today" for a health worker is the local calendar day, not the UTC one.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Parse reads a strict YYYY-MM-DD string. Impossible days such as
// 2023-02-29 are rejected rather than normalised.
func Parse(s string) (Date, error) {
	t, err := time.Parse(LayoutISO, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns midnight UTC of the date. UTC keeps day arithmetic free of DST gaps.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String returns the ISO representation.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display returns the DD MMM YYYY representation.
func (d Date) Display() string {
	return d.Time().Format(LayoutDisplay)
}

// AddDays shifts the date by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddWeeks shifts the date by n weeks.
func (d Date) AddWeeks(n int) Date {
	return d.AddDays(n * 7)
}

// AddMonths shifts the date by n calendar months. When the target month is
// shorter than d.Day, the result is clamped to the target month's last day:
// Jan 31 + 1 month is Feb 29 in a leap year and Feb 28 otherwise.
// time.AddDate would overflow into March instead.
func (d Date) AddMonths(n int) Date {
	total := d.Year*12 + int(d.Month) - 1 + n
	year := floorDiv(total, 12)
	month := time.Month(total-year*12) + 1

	day := d.Day
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// AddYears shifts the date by n years with the same clamping as AddMonths
// (Feb 29 + 1 year is Feb 28).
func (d Date) AddYears(n int) Date {
	return d.AddMonths(n * 12)
}

// Compare returns -1, 0 or +1 when d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool { return d.Compare(other) == 0 }

// MarshalText encodes the date as YYYY-MM-DD (used by encoding/json).
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a strict YYYY-MM-DD value.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed number of days a - b.
func DaysBetween(a, b Date) int {
	return int((a.Time().Unix() - b.Time().Unix()) / secondsPerDay)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
