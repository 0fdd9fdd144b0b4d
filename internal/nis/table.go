// Package nis generates the child immunization schedule from a birth date.
//
// The vaccines, their offsets from birth and their labels are reference
// data kept in a versioned JSON table embedded at build time, so the table
// can be revised without touching the generator.
package nis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
)

//go:embed schedule.json
var defaultTableData []byte

// Offset unit names accepted in the table.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
)

// Offset is a distance from the birth date.
type Offset struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// Apply returns birth shifted by the offset.
func (o Offset) Apply(birth datecalc.Date) datecalc.Date {
	switch o.Unit {
	case UnitWeeks:
		return birth.AddWeeks(o.Value)
	case UnitMonths:
		return birth.AddMonths(o.Value)
	default:
		return birth.AddDays(o.Value)
	}
}

// Entry is one row of the reference table.
type Entry struct {
	Ordinal       int    `json:"ordinal"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
	Offset        Offset `json:"offset"`
	Age           string `json:"age"`
	Description   string `json:"description"`
}

// Table is a versioned immunization schedule.
type Table struct {
	Version string  `json:"version"`
	Source  string  `json:"source"`
	Entries []Entry `json:"entries"`
}

// Event is a vaccination visit computed for a specific child.
type Event struct {
	Ordinal       int           `json:"ordinal"`
	Name          string        `json:"name"`
	LocalizedName string        `json:"localized_name"`
	DueDate       datecalc.Date `json:"due_date"`
	Age           string        `json:"age"`
	Description   string        `json:"description"`
	Offset        Offset        `json:"offset"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded reference table. The embedded file is
// validated by the test suite, so a decode failure here is a build defect.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := LoadTable(bytes.NewReader(defaultTableData))
		if err != nil {
			panic(fmt.Sprintf("%s: %v", config.ErrScheduleEmbedded, err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Generate computes the schedule for birth using the default table.
func Generate(birth datecalc.Date) []Event {
	return Default().Generate(birth)
}

// LoadTable decodes and validates a schedule table.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrScheduleDecode, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that the table can produce a well-formed schedule.
func (t *Table) Validate() error {
	if t.Version == "" {
		return errors.New(config.ErrScheduleVersion)
	}
	if len(t.Entries) == 0 {
		return errors.New(config.ErrScheduleEmpty)
	}

	seen := make(map[int]bool, len(t.Entries))
	for i, e := range t.Entries {
		switch {
		case e.Name == "" || e.Age == "":
			return fmt.Errorf("%s: entry %d has no name or age label", config.ErrScheduleEntry, i)
		case e.Offset.Value < 0:
			return fmt.Errorf("%s: entry %d has a negative offset", config.ErrScheduleEntry, i)
		case e.Offset.Unit != UnitDays && e.Offset.Unit != UnitWeeks && e.Offset.Unit != UnitMonths:
			return fmt.Errorf("%s: entry %d has unknown unit %q", config.ErrScheduleEntry, i, e.Offset.Unit)
		case seen[e.Ordinal]:
			return fmt.Errorf("%s: duplicate ordinal %d", config.ErrScheduleEntry, e.Ordinal)
		}
		seen[e.Ordinal] = true
	}
	return nil
}

// Generate computes one event per table entry, in table order.
// Only DueDate depends on birth.
func (t *Table) Generate(birth datecalc.Date) []Event {
	events := make([]Event, 0, len(t.Entries))
	for _, e := range t.Entries {
		events = append(events, Event{
			Ordinal:       e.Ordinal,
			Name:          e.Name,
			LocalizedName: e.LocalizedName,
			DueDate:       e.Offset.Apply(birth),
			Age:           e.Age,
			Description:   e.Description,
			Offset:        e.Offset,
		})
	}
	return events
}
