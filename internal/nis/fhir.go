package nis

import (
	"github.com/google/uuid"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
)

// Minimal FHIR R4 shapes needed for an ImmunizationRecommendation.

// Coding is one code from a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept is a set of codings plus a plain-text label.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Reference points at another resource, e.g. "Patient/1".
type Reference struct {
	Reference string `json:"reference"`
}

// DateCriterion is a dated milestone of a recommendation (due, overdue).
type DateCriterion struct {
	Code  CodeableConcept `json:"code"`
	Value string          `json:"value"`
}

// Recommendation is one vaccine dose with its forecast status.
type Recommendation struct {
	VaccineCode           []CodeableConcept `json:"vaccineCode"`
	ForecastStatus        CodeableConcept   `json:"forecastStatus"`
	DateCriterion         []DateCriterion   `json:"dateCriterion"`
	Description           string            `json:"description,omitempty"`
	Series                string            `json:"series,omitempty"`
	DoseNumberPositiveInt int               `json:"doseNumberPositiveInt"`
}

// Meta carries the resource version and the profiles it conforms to.
type Meta struct {
	VersionID string   `json:"versionId"`
	Profile   []string `json:"profile"`
}

// ImmunizationRecommendation is the FHIR resource rendering of a schedule.
type ImmunizationRecommendation struct {
	ResourceType   string           `json:"resourceType"`
	ID             string           `json:"id"`
	Meta           Meta             `json:"meta"`
	Patient        Reference        `json:"patient"`
	Date           string           `json:"date"`
	Recommendation []Recommendation `json:"recommendation"`
}

// FHIR renders the schedule for birth as an ImmunizationRecommendation.
// Events due before today are marked overdue, the rest due.
// The resource id is derived from patientRef and birth, so the same child
// always maps to the same id.
func (t *Table) FHIR(patientRef string, birth, today datecalc.Date) ImmunizationRecommendation {
	events := t.Generate(birth)
	recs := make([]Recommendation, 0, len(events))

	for _, e := range events {
		status := config.FHIRForecastDue
		if e.DueDate.Before(today) {
			status = config.FHIRForecastOverdue
		}
		recs = append(recs, Recommendation{
			VaccineCode: []CodeableConcept{{Text: e.Name}},
			ForecastStatus: CodeableConcept{
				Coding: []Coding{{System: config.FHIRForecastSystem, Code: status}},
			},
			DateCriterion: []DateCriterion{{
				Code: CodeableConcept{
					Coding: []Coding{{System: config.FHIRLoincSystem, Code: config.FHIRDateDueCode, Display: config.FHIRDateDueDisplay}},
				},
				Value: e.DueDate.String(),
			}},
			Description:           e.Description,
			Series:                t.Source,
			DoseNumberPositiveInt: e.Ordinal,
		})
	}

	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(patientRef+"|"+birth.String()+"|"+t.Version))

	return ImmunizationRecommendation{
		ResourceType: config.FHIRResourceType,
		ID:           id.String(),
		Meta: Meta{
			VersionID: t.Version,
			Profile:   []string{config.FHIRProfile},
		},
		Patient:        Reference{Reference: patientRef},
		Date:           today.String(),
		Recommendation: recs,
	}
}
