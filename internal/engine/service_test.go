package engine_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, src engine.RemoteSource) (io.ReadCloser, error) {
	args := m.Called(ctx, src)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock pins "today".
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func serviceAt(y int, m time.Month, d int) *engine.Service {
	return &engine.Service{Clock: MockClock{CurrentTime: time.Date(y, m, d, 10, 0, 0, 0, time.UTC)}}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var ie *engine.InputError
	require.True(t, errors.As(err, &ie), "want *InputError, got %T", err)
	assert.Equal(t, code, ie.Code)
	assert.Equal(t, code, engine.ErrorCode(err))
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestPregnancyFromLMP(t *testing.T) {
	svc := serviceAt(2024, 2, 29)

	p, err := svc.PregnancyFromLMP("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-07", p.EDD.String())
	assert.Equal(t, datecalc.GestationalAge{Weeks: 8, Days: 3}, p.Age)

	// LMP today is allowed.
	p, err = svc.PregnancyFromLMP("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, datecalc.GestationalAge{}, p.Age)
}

func TestPregnancyFromLMP_Rejects(t *testing.T) {
	svc := serviceAt(2024, 2, 29)

	_, err := svc.PregnancyFromLMP("2024-03-01")
	requireCode(t, err, config.CodeFutureLMP)

	_, err = svc.PregnancyFromLMP("2023-02-29")
	requireCode(t, err, config.CodeInvalidDate)

	_, err = svc.PregnancyFromLMP("29/02/2024")
	requireCode(t, err, config.CodeInvalidDate)

	_, err = svc.PregnancyFromLMP("  ")
	requireCode(t, err, config.CodeMissingInput)
}

func TestPregnancyFromEDD(t *testing.T) {
	svc := serviceAt(2024, 2, 29)

	p, err := svc.PregnancyFromEDD("2024-10-07")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", p.LMP.String())
	assert.Equal(t, datecalc.GestationalAge{Weeks: 8, Days: 3}, p.Age)

	// An EDD far ahead derives a future LMP: accepted, age clamps to zero.
	p, err = svc.PregnancyFromEDD("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, datecalc.GestationalAge{}, p.Age)
}

func TestPregnancyFromAge(t *testing.T) {
	svc := serviceAt(2024, 2, 29)

	p, err := svc.PregnancyFromAge("8", "3")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", p.LMP.String())
	assert.Equal(t, "2024-10-07", p.EDD.String())

	p, err = svc.PregnancyFromAge("0", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", p.LMP.String())

	tests := []struct {
		name        string
		weeks, days string
		code        string
	}{
		{"no weeks", "", "1", config.CodeMissingInput},
		{"text", "eight", "0", config.CodeInvalidNumber},
		{"negative", "-1", "0", config.CodeInvalidNumber},
		{"days out of range", "8", "7", config.CodeInvalidNumber},
		{"too many weeks", "46", "0", config.CodeInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PregnancyFromAge(tt.weeks, tt.days)
			requireCode(t, err, tt.code)
		})
	}
}

func TestSchedule(t *testing.T) {
	svc := serviceAt(2024, 6, 1)

	birth, events, err := svc.Schedule("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, datecalc.Of(2024, 1, 1), birth)
	require.Len(t, events, 6)
	assert.Equal(t, "2024-02-12", events[1].DueDate.String())

	_, _, err = svc.Schedule("2024-06-02")
	requireCode(t, err, config.CodeFutureBirth)

	_, _, err = svc.Schedule("2024-13-01")
	requireCode(t, err, config.CodeInvalidDate)
}

func TestForecast(t *testing.T) {
	svc := serviceAt(2024, 3, 1)

	doc, err := svc.Forecast("Patient/1", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", doc.Date)
	assert.Len(t, doc.Recommendation, 6)

	_, err = svc.Forecast("Patient/1", "2025-01-01")
	requireCode(t, err, config.CodeFutureBirth)
}

func TestDifference(t *testing.T) {
	svc := serviceAt(2024, 6, 1)

	d, err := svc.Difference("2023-01-15", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, datecalc.Duration{Years: 1, Months: 1, Days: 15}, d)

	d, err = svc.Difference("2024-03-01", "2023-01-15")
	require.NoError(t, err)
	assert.Equal(t, datecalc.Duration{Years: 1, Months: 1, Days: 15, Negative: true}, d)

	_, err = svc.Difference("2024-03-01", "")
	requireCode(t, err, config.CodeMissingInput)
}

func TestOffset(t *testing.T) {
	svc := serviceAt(2024, 6, 1)

	d, err := svc.Offset("2024-01-31", 0, engine.ParseInt("1"), engine.ParseInt("abc"))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = svc.Offset("2024-02-29", 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", d.String())

	d, err = svc.Offset("2024-01-01", -200, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "1824-01-01", d.String())
}

func TestOffset_OutOfRange(t *testing.T) {
	svc := serviceAt(2024, 6, 1)

	tests := []struct {
		name                string
		years, months, days int
		field               string
	}{
		{"Too many years", 201, 0, 0, config.ParamYears},
		{"Min int years", math.MinInt, 0, 0, config.ParamYears},
		{"Min int months", 0, math.MinInt, 0, config.ParamMonths},
		{"Too many months back", 0, -2401, 0, config.ParamMonths},
		{"Min int days", 0, 0, math.MinInt, config.ParamDays},
		{"Max int days", 0, 0, math.MaxInt, config.ParamDays},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Offset("2024-01-01", tt.years, tt.months, tt.days)
			requireCode(t, err, config.CodeInvalidNumber)
			var ie *engine.InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestParseInt_Lenient(t *testing.T) {
	assert.Equal(t, 0, engine.ParseInt(""))
	assert.Equal(t, 0, engine.ParseInt("x"))
	assert.Equal(t, -3, engine.ParseInt(" -3 "))
	assert.Equal(t, 12, engine.ParseInt("12"))
}

func TestDaysBreakdown(t *testing.T) {
	svc := serviceAt(2024, 6, 1)

	a, err := svc.DaysBreakdown("400")
	require.NoError(t, err)
	assert.Equal(t, datecalc.ApproxDuration{Years: 1, Months: 1, Days: 4}, a)

	_, err = svc.DaysBreakdown("-1")
	requireCode(t, err, config.CodeInvalidNumber)

	_, err = svc.DaysBreakdown("1000001")
	requireCode(t, err, config.CodeInvalidNumber)
}

func TestInputError_Format(t *testing.T) {
	inner := errors.New("boom")
	err := &engine.InputError{Code: config.CodeInvalidDate, Field: "lmp", Err: inner}
	assert.Equal(t, "lmp: invalid_date: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Empty(t, engine.ErrorCode(inner))
}
