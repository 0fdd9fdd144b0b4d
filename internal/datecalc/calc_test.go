package datecalc_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
)

func mustParse(t *testing.T, s string) datecalc.Date {
	t.Helper()
	d, err := datecalc.Parse(s)
	require.NoError(t, err)
	return d
}

// -----------------------------------------------------------------------------
// Date value
// -----------------------------------------------------------------------------

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    datecalc.Date
		wantErr bool
	}{
		{"2024-01-01", datecalc.Date{Year: 2024, Month: time.January, Day: 1}, false},
		{"2024-02-29", datecalc.Date{Year: 2024, Month: time.February, Day: 29}, false},
		{"2023-02-29", datecalc.Date{}, true}, // not a leap year
		{"2024-13-01", datecalc.Date{}, true},
		{"01/02/2024", datecalc.Date{}, true},
		{"", datecalc.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := datecalc.Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_Formatting(t *testing.T) {
	d := datecalc.Of(2024, time.October, 7)
	assert.Equal(t, "2024-10-07", d.String())
	assert.Equal(t, "07 Oct 2024", d.Display())

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-10-07"`, string(raw))

	var back datecalc.Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)
}

func TestDate_AddMonthsClamps(t *testing.T) {
	tests := []struct {
		from   string
		months int
		want   string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2024-05-31", 1, "2024-06-30"},
		{"2024-11-15", 2, "2025-01-15"},
		{"2024-01-15", -13, "2022-12-15"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got := mustParse(t, tt.from).AddMonths(tt.months)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDate_Compare(t *testing.T) {
	a := datecalc.Of(2024, 1, 31)
	b := datecalc.Of(2024, 2, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(datecalc.Of(2024, 1, 31)))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 1, datecalc.DaysBetween(b, a))
	assert.Equal(t, -1, datecalc.DaysBetween(a, b))
}

// -----------------------------------------------------------------------------
// Pregnancy dating
// -----------------------------------------------------------------------------

func TestEDDAndLMP_RoundTrip(t *testing.T) {
	start := datecalc.Of(2023, 1, 1)
	for i := 0; i < 2*366; i += 7 {
		d := start.AddDays(i)
		assert.Equal(t, d, datecalc.LMPFromEDD(datecalc.EDDFromLMP(d)), d.String())
		assert.Equal(t, d, datecalc.EDDFromLMP(datecalc.LMPFromEDD(d)), d.String())
	}
}

func TestEDDFromLMP_Reference(t *testing.T) {
	lmp := mustParse(t, "2024-01-01")
	assert.Equal(t, "2024-10-07", datecalc.EDDFromLMP(lmp).String())
}

func TestGestationalAgeAt(t *testing.T) {
	lmp := mustParse(t, "2024-01-01")

	age := datecalc.GestationalAgeAt(lmp, mustParse(t, "2024-03-01"))
	assert.Equal(t, datecalc.GestationalAge{Weeks: 8, Days: 4}, age)
	assert.Equal(t, 60, age.TotalDays())

	// Same day is zero weeks zero days.
	assert.Equal(t, datecalc.GestationalAge{}, datecalc.GestationalAgeAt(lmp, lmp))

	// LMP after today clamps to zero.
	assert.Equal(t, datecalc.GestationalAge{}, datecalc.GestationalAgeAt(lmp, lmp.AddDays(-3)))
}

func TestGestationalAgeAt_Invariant(t *testing.T) {
	lmp := datecalc.Of(2024, 2, 10)
	for n := 0; n < 300; n++ {
		today := lmp.AddDays(n)
		age := datecalc.GestationalAgeAt(lmp, today)
		assert.GreaterOrEqual(t, age.Days, 0)
		assert.LessOrEqual(t, age.Days, 6)
		assert.Equal(t, datecalc.DaysBetween(today, lmp), age.TotalDays())
	}
}

func TestLMPFromGestationalAge(t *testing.T) {
	today := mustParse(t, "2024-03-01")
	lmp := datecalc.LMPFromGestationalAge(today, 8, 4)
	assert.Equal(t, "2024-01-01", lmp.String())
	assert.Equal(t, datecalc.GestationalAge{Weeks: 8, Days: 4}, datecalc.GestationalAgeAt(lmp, today))
}

// -----------------------------------------------------------------------------
// Durations
// -----------------------------------------------------------------------------

func TestPrecise(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       datecalc.Duration
	}{
		{"identity", "2024-05-05", "2024-05-05", datecalc.Duration{}},
		{"one day", "2024-05-05", "2024-05-06", datecalc.Duration{Days: 1}},
		{"one year", "2023-03-01", "2024-03-01", datecalc.Duration{Years: 1}},
		{"month end walk", "2023-01-31", "2023-03-01", datecalc.Duration{Months: 1, Days: 1}},
		{"leap day start", "2024-02-29", "2025-02-28", datecalc.Duration{Years: 1}},
		{"mixed", "2023-01-15", "2024-03-01", datecalc.Duration{Years: 1, Months: 1, Days: 15}},
		{"almost a year", "2023-06-10", "2024-06-09", datecalc.Duration{Months: 11, Days: 30}},
		{"reversed", "2024-03-01", "2023-01-15", datecalc.Duration{Years: 1, Months: 1, Days: 15, Negative: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := datecalc.Precise(mustParse(t, tt.start), mustParse(t, tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrecise_IdentityAcrossYear(t *testing.T) {
	d := datecalc.Of(2024, 1, 1)
	for i := 0; i < 366; i++ {
		assert.Equal(t, datecalc.Duration{}, datecalc.Precise(d, d))
		d = d.AddDays(1)
	}
}

func TestApplyOffset(t *testing.T) {
	tests := []struct {
		name                string
		from                string
		years, months, days int
		want                string
	}{
		{"jan 31 plus one month", "2024-01-31", 0, 1, 0, "2024-02-29"},
		{"jan 31 plus one month non leap", "2023-01-31", 0, 1, 0, "2023-02-28"},
		{"leap day plus one year", "2024-02-29", 1, 0, 0, "2025-02-28"},
		{"leap day plus four years", "2024-02-29", 4, 0, 0, "2028-02-29"},
		{"months before days", "2024-01-31", 0, 1, 1, "2024-03-01"},
		{"all negative", "2024-03-31", -1, -1, -1, "2023-02-27"},
		{"zero", "2024-07-15", 0, 0, 0, "2024-07-15"},
		{"days only", "2024-01-01", 0, 0, 280, "2024-10-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := datecalc.ApplyOffset(mustParse(t, tt.from), tt.years, tt.months, tt.days)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestApproximate(t *testing.T) {
	tests := []struct {
		total int
		want  datecalc.ApproxDuration
	}{
		{0, datecalc.ApproxDuration{}},
		{30, datecalc.ApproxDuration{Days: 30}},
		{31, datecalc.ApproxDuration{Months: 1}},
		{364, datecalc.ApproxDuration{Months: 11, Days: 29}},
		{365, datecalc.ApproxDuration{Years: 1}},
		{400, datecalc.ApproxDuration{Years: 1, Months: 1, Days: 4}},
		{-1, datecalc.ApproxDuration{Years: -1, Months: 11, Days: 29}},
	}

	for _, tt := range tests {
		got := datecalc.Approximate(tt.total)
		assert.Equal(t, tt.want, got, "total=%d", tt.total)
	}
}

// The two duration algorithms deliberately disagree.
func TestApproximate_DiffersFromPrecise(t *testing.T) {
	start := datecalc.Of(2024, 1, 1)
	end := datecalc.Of(2024, 12, 31)

	precise := datecalc.Precise(start, end)
	approx := datecalc.Approximate(datecalc.DaysBetween(end, start))

	assert.Equal(t, datecalc.Duration{Months: 11, Days: 30}, precise)
	assert.Equal(t, datecalc.ApproxDuration{Years: 1}, approx)
}
