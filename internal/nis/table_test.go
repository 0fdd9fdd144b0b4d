package nis_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/nis"
)

func TestDefaultTable_Integrity(t *testing.T) {
	table := nis.Default()
	require.NotNil(t, table)
	assert.NoError(t, table.Validate())
	assert.NotEmpty(t, table.Version)
	assert.Len(t, table.Entries, 6)
}

func TestGenerate_FixedOrderAndOffsets(t *testing.T) {
	birth := datecalc.Of(2024, 1, 1)
	events := nis.Generate(birth)
	require.Len(t, events, 6)

	expected := []struct {
		age string
		due string
	}{
		{"At Birth", "2024-01-01"},
		{"6 Weeks", "2024-02-12"},
		{"10 Weeks", "2024-03-11"},
		{"14 Weeks", "2024-04-08"},
		{"9 Months", "2024-10-01"},
		{"16-24 Months", "2025-04-30"},
	}

	for i, want := range expected {
		assert.Equal(t, i+1, events[i].Ordinal)
		assert.Equal(t, want.age, events[i].Age, "event %d", i+1)
		assert.Equal(t, want.due, events[i].DueDate.String(), "event %d", i+1)
		assert.NotEmpty(t, events[i].Name)
		assert.NotEmpty(t, events[i].LocalizedName)
		assert.NotEmpty(t, events[i].Description)
	}
}

// Only DueDate depends on the birth date.
func TestGenerate_OnlyDueDateVaries(t *testing.T) {
	a := nis.Generate(datecalc.Of(2020, 2, 29))
	b := nis.Generate(datecalc.Of(2025, 12, 31))
	require.Len(t, b, len(a))

	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].LocalizedName, b[i].LocalizedName)
		assert.Equal(t, a[i].Age, b[i].Age)
		assert.Equal(t, a[i].Description, b[i].Description)
	}

	birth := datecalc.Of(2025, 12, 31)
	assert.Equal(t, birth, b[0].DueDate)
	assert.Equal(t, birth.AddWeeks(6), b[1].DueDate)
	assert.Equal(t, birth.AddDays(274), b[4].DueDate)
}

func TestLoadTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"empty entries", `{"version":"x","entries":[]}`, config.ErrScheduleEmpty},
		{"no version", `{"entries":[{"ordinal":1,"name":"a","age":"b","offset":{"value":0,"unit":"days"}}]}`, config.ErrScheduleVersion},
		{"bad unit", `{"version":"x","entries":[{"ordinal":1,"name":"a","age":"b","offset":{"value":1,"unit":"fortnights"}}]}`, config.ErrScheduleEntry},
		{"negative", `{"version":"x","entries":[{"ordinal":1,"name":"a","age":"b","offset":{"value":-1,"unit":"days"}}]}`, config.ErrScheduleEntry},
		{"unknown field", `{"version":"x","colour":"red","entries":[]}`, config.ErrScheduleDecode},
		{"duplicate ordinal", `{"version":"x","entries":[
			{"ordinal":1,"name":"a","age":"b","offset":{"value":0,"unit":"days"}},
			{"ordinal":1,"name":"c","age":"d","offset":{"value":1,"unit":"days"}}]}`, config.ErrScheduleEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nis.LoadTable(strings.NewReader(tt.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTable_CustomMonthsUnit(t *testing.T) {
	table, err := nis.LoadTable(strings.NewReader(`{"version":"test","entries":[
		{"ordinal":1,"name":"Booster","age":"1 Month","offset":{"value":1,"unit":"months"}}]}`))
	require.NoError(t, err)

	events := table.Generate(datecalc.Of(2024, 1, 31))
	require.Len(t, events, 1)
	assert.Equal(t, "2024-02-29", events[0].DueDate.String())
}

func TestFHIR_ForecastStatus(t *testing.T) {
	birth := datecalc.Of(2024, 1, 1)
	today := datecalc.Of(2024, 3, 1) // after 6 weeks, before 10 weeks

	doc := nis.Default().FHIR("Patient/child-1", birth, today)

	assert.Equal(t, config.FHIRResourceType, doc.ResourceType)
	assert.Equal(t, "Patient/child-1", doc.Patient.Reference)
	assert.Equal(t, "2024-03-01", doc.Date)
	require.Len(t, doc.Recommendation, 6)

	statuses := make([]string, 0, 6)
	for _, r := range doc.Recommendation {
		statuses = append(statuses, r.ForecastStatus.Coding[0].Code)
	}
	assert.Equal(t, []string{
		config.FHIRForecastOverdue,
		config.FHIRForecastOverdue,
		config.FHIRForecastDue, // 2024-03-11
		config.FHIRForecastDue,
		config.FHIRForecastDue,
		config.FHIRForecastDue,
	}, statuses)

	assert.Equal(t, "2024-10-01", doc.Recommendation[4].DateCriterion[0].Value)

	// Same child, same id.
	again := nis.Default().FHIR("Patient/child-1", birth, today)
	assert.Equal(t, doc.ID, again.ID)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"resourceType":"ImmunizationRecommendation"`)
}
