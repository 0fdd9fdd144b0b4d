// Package datecalc holds the pure date arithmetic behind the ANC calculator
// and the date tools. Nothing here reads the clock: "today" is always an
// argument, so every function is deterministic and safe for concurrent use.
package datecalc

import "math"

const (
	// PregnancyDays is the obstetric convention LMP -> EDD (40 weeks).
	PregnancyDays = 280

	// DaysPerYear and AvgMonthDays drive the approximate breakdown only.
	DaysPerYear  = 365
	AvgMonthDays = 30.44
)

// GestationalAge is the elapsed time since the LMP as full weeks plus 0-6 days.
type GestationalAge struct {
	Weeks int `json:"weeks"`
	Days  int `json:"days"`
}

// TotalDays returns Weeks*7 + Days.
func (g GestationalAge) TotalDays() int {
	return g.Weeks*7 + g.Days
}

// Duration is a calendar-exact gap between two dates.
// Months is in [0,11]; Days is below the length of the month it was counted in.
// Negative is set when the gap was measured backwards (start after end).
type Duration struct {
	Years    int  `json:"years"`
	Months   int  `json:"months"`
	Days     int  `json:"days"`
	Negative bool `json:"negative"`
}

// ApproxDuration is a fixed-ratio breakdown of a day count (365 / 30.44).
// It does not round-trip to the original count.
type ApproxDuration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// EDDFromLMP returns the expected delivery date, LMP + 280 days.
func EDDFromLMP(lmp Date) Date {
	return lmp.AddDays(PregnancyDays)
}

// LMPFromEDD is the exact inverse of EDDFromLMP.
func LMPFromEDD(edd Date) Date {
	return edd.AddDays(-PregnancyDays)
}

// LMPFromGestationalAge reconstructs the LMP from an age reported on "today".
func LMPFromGestationalAge(today Date, weeks, days int) Date {
	return today.AddDays(-(weeks*7 + days))
}

// GestationalAgeAt decomposes today - lmp into weeks and remainder days.
// An LMP after today yields the zero age; callers reject that case before
// calling, but a future EDD can legitimately derive such an LMP.
func GestationalAgeAt(lmp, today Date) GestationalAge {
	total := DaysBetween(today, lmp)
	if total < 0 {
		total = 0
	}
	weeks := floorDiv(total, 7)
	return GestationalAge{Weeks: weeks, Days: total - weeks*7}
}

// Precise walks from start to end by whole years, then whole months, then
// counts the leftover days. Year and month steps use the clamped AddYears /
// AddMonths rules. If start is after end the operands are swapped and the
// result carries Negative = true.
func Precise(start, end Date) Duration {
	negative := false
	if start.After(end) {
		start, end = end, start
		negative = true
	}

	years := end.Year - start.Year
	if start.AddYears(years).After(end) {
		years--
	}
	cursor := start.AddYears(years)

	months := (end.Year-cursor.Year)*12 + int(end.Month) - int(cursor.Month)
	if cursor.AddMonths(months).After(end) {
		months--
	}
	cursor = cursor.AddMonths(months)

	return Duration{
		Years:    years,
		Months:   months,
		Days:     DaysBetween(end, cursor),
		Negative: negative,
	}
}

// ApplyOffset adds years, then months, then days. The order matters near
// month ends: 2024-01-31 +1 month is 2024-02-29 before any day offset applies.
func ApplyOffset(d Date, years, months, days int) Date {
	return d.AddYears(years).AddMonths(months).AddDays(days)
}

// Approximate breaks a day count into years of 365 days and months of
// 30.44 days, truncating at each step. Division is floored and the
// remainder kept non-negative, so negative input still yields months in
// [0,11] and days in [0,30].
func Approximate(totalDays int) ApproxDuration {
	years := floorDiv(totalDays, DaysPerYear)
	rem := float64(totalDays - years*DaysPerYear)

	return ApproxDuration{
		Years:  years,
		Months: int(math.Floor(rem / AvgMonthDays)),
		Days:   int(math.Floor(math.Mod(rem, AvgMonthDays))),
	}
}
