// Package engine validates user input, reads "today" from a Clock and
// drives the date calculator and the immunization schedule. It also turns
// schedules into iCalendar feeds and imports children from vCard address
// books.
package engine

import (
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/nis"
)

// Service is safe for concurrent use; copy it to change FormatSummary per request.
type Service struct {
	Clock   Clock        // "today"; RealClock when nil.
	Table   *nis.Table   // nis.Default() when nil.
	Fetcher VCardFetcher // Only needed for web imports.

	// FormatSummary lets the caller localize calendar event titles.
	FormatSummary func(child, vaccine string) string
}

// Pregnancy is the ANC calculator result.
type Pregnancy struct {
	LMP datecalc.Date           `json:"lmp"`
	EDD datecalc.Date           `json:"edd"`
	Age datecalc.GestationalAge `json:"gestational_age"`
}

// Today returns the current local date.
func (s *Service) Today() datecalc.Date {
	return today(s.Clock)
}

func (s *Service) table() *nis.Table {
	if s.Table != nil {
		return s.Table
	}
	return nis.Default()
}

// PregnancyFromLMP derives EDD and current age from a last menstrual period.
// An LMP after today is rejected.
func (s *Service) PregnancyFromLMP(value string) (Pregnancy, error) {
	lmp, err := ParseDate(config.ParamLMP, value)
	if err != nil {
		return Pregnancy{}, err
	}
	now := s.Today()
	if lmp.After(now) {
		return Pregnancy{}, inputErr(config.CodeFutureLMP, config.ParamLMP, nil)
	}
	return Pregnancy{
		LMP: lmp,
		EDD: datecalc.EDDFromLMP(lmp),
		Age: datecalc.GestationalAgeAt(lmp, now),
	}, nil
}

// PregnancyFromEDD derives the LMP and current age from an expected
// delivery date. Any EDD is accepted; an LMP still in the future gives
// a zero age.
func (s *Service) PregnancyFromEDD(value string) (Pregnancy, error) {
	edd, err := ParseDate(config.ParamEDD, value)
	if err != nil {
		return Pregnancy{}, err
	}
	lmp := datecalc.LMPFromEDD(edd)
	return Pregnancy{
		LMP: lmp,
		EDD: edd,
		Age: datecalc.GestationalAgeAt(lmp, s.Today()),
	}, nil
}

// PregnancyFromAge works back from a gestational age reported today.
func (s *Service) PregnancyFromAge(weeks, days string) (Pregnancy, error) {
	w, err := ParseCount(config.ParamWeeks, weeks)
	if err != nil {
		return Pregnancy{}, err
	}
	d := 0
	if days != "" {
		if d, err = ParseCount(config.ParamDays, days); err != nil {
			return Pregnancy{}, err
		}
	}
	if w > config.MaxGestWeeks {
		return Pregnancy{}, inputErr(config.CodeInvalidNumber, config.ParamWeeks, nil)
	}
	if d > 6 {
		return Pregnancy{}, inputErr(config.CodeInvalidNumber, config.ParamDays, nil)
	}

	now := s.Today()
	lmp := datecalc.LMPFromGestationalAge(now, w, d)
	return Pregnancy{
		LMP: lmp,
		EDD: datecalc.EDDFromLMP(lmp),
		Age: datecalc.GestationalAge{Weeks: w, Days: d},
	}, nil
}

// Schedule returns the vaccination events for a child born on value.
func (s *Service) Schedule(value string) (datecalc.Date, []nis.Event, error) {
	birth, err := s.birthDate(value)
	if err != nil {
		return datecalc.Date{}, nil, err
	}
	return birth, s.table().Generate(birth), nil
}

// Forecast renders the schedule as a FHIR ImmunizationRecommendation.
func (s *Service) Forecast(patientRef, value string) (nis.ImmunizationRecommendation, error) {
	birth, err := s.birthDate(value)
	if err != nil {
		return nis.ImmunizationRecommendation{}, err
	}
	return s.table().FHIR(patientRef, birth, s.Today()), nil
}

func (s *Service) birthDate(value string) (datecalc.Date, error) {
	birth, err := ParseDate(config.ParamBirth, value)
	if err != nil {
		return datecalc.Date{}, err
	}
	if birth.After(s.Today()) {
		return datecalc.Date{}, inputErr(config.CodeFutureBirth, config.ParamBirth, nil)
	}
	return birth, nil
}

// Difference is the calendar-exact gap from start to end.
func (s *Service) Difference(start, end string) (datecalc.Duration, error) {
	a, err := ParseDate(config.ParamStart, start)
	if err != nil {
		return datecalc.Duration{}, err
	}
	b, err := ParseDate(config.ParamEnd, end)
	if err != nil {
		return datecalc.Duration{}, err
	}
	return datecalc.Precise(a, b), nil
}

// Offset shifts a date by years, months and days (applied in that order).
// Offsets beyond config.MaxOffsetYears (or config.MaxTotalDays days) are rejected.
func (s *Service) Offset(value string, years, months, days int) (datecalc.Date, error) {
	d, err := ParseDate(config.ParamDate, value)
	if err != nil {
		return datecalc.Date{}, err
	}
	for _, c := range []struct {
		field   string
		n, most int
	}{
		{config.ParamYears, years, config.MaxOffsetYears},
		{config.ParamMonths, months, config.MaxOffsetYears * 12},
		{config.ParamDays, days, config.MaxTotalDays},
	} {
		if !within(c.n, c.most) {
			return datecalc.Date{}, inputErr(config.CodeInvalidNumber, c.field, nil)
		}
	}
	return datecalc.ApplyOffset(d, years, months, days), nil
}

// DaysBreakdown splits a non-negative day count into approximate years,
// months and days.
func (s *Service) DaysBreakdown(total string) (datecalc.ApproxDuration, error) {
	n, err := ParseCount(config.ParamTotal, total)
	if err != nil {
		return datecalc.ApproxDuration{}, err
	}
	if n > config.MaxTotalDays {
		return datecalc.ApproxDuration{}, inputErr(config.CodeInvalidNumber, config.ParamTotal, nil)
	}
	return datecalc.Approximate(n), nil
}

// within reports whether -most <= n <= most. It never negates n, so
// math.MinInt is rejected too.
func within(n, most int) bool {
	return n >= -most && n <= most
}
