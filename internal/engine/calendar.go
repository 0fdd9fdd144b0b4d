package engine

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/nis"
)

// reminderPattern accepts the RFC 5545 dur-value forms used for alarm
// triggers (-P1D, -PT12H, P2W, -P1DT6H...).
var reminderPattern = regexp.MustCompile(`^[-+]?P(\d+W|\d+D(T(\d+H)?(\d+M)?(\d+S)?)?|T(\d+H)?(\d+M)?(\d+S)?)$`)

// ValidateReminder checks an alarm trigger. Empty means "no alarm".
func ValidateReminder(trigger string) error {
	if trigger == "" {
		return nil
	}
	if !reminderPattern.MatchString(trigger) || trigger[len(trigger)-1] == 'T' {
		return inputErr(config.CodeBadReminder, config.ParamReminder, errors.New(config.ErrReminderInvalid))
	}
	return nil
}

// ScheduleCalendar renders one child's schedule as an iCalendar feed: one
// all-day event per vaccination, each with an optional DISPLAY alarm.
func (s *Service) ScheduleCalendar(child string, birth datecalc.Date, reminder string) ([]byte, error) {
	if err := ValidateReminder(reminder); err != nil {
		return nil, err
	}
	cal := newCalendar()
	stamp := stampProp(s.Clock)
	for _, e := range s.vaccinationEvents(child, birth, s.table().Generate(birth), reminder) {
		e.Props.Set(stamp)
		cal.Children = append(cal.Children, e.Component)
	}
	return encodeCalendar(cal)
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)
	return cal
}

func stampProp(c Clock) *ical.Prop {
	if c == nil {
		c = RealClock{}
	}
	p := ical.NewProp(config.PropDTStamp)
	p.SetDateTime(c.Now().UTC())
	return p
}

func encodeCalendar(cal *ical.Calendar) ([]byte, error) {
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// childUID is stable for a given child so that re-imports update events
// in calendar clients instead of duplicating them.
func childUID(child string, birth datecalc.Date) string {
	input := fmt.Sprintf(config.FormatHashInput, child, birth.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

func (s *Service) summary(child, vaccine string) string {
	if s.FormatSummary != nil {
		return s.FormatSummary(child, vaccine)
	}
	if child == "" {
		return vaccine
	}
	return fmt.Sprintf(config.FallbackSummary, child, vaccine)
}

func (s *Service) vaccinationEvents(child string, birth datecalc.Date, events []nis.Event, reminder string) []*ical.Event {
	uidBase := childUID(child, birth)
	out := make([]*ical.Event, 0, len(events))

	for _, v := range events {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, v.Ordinal, config.ICalDomain))

		summary := s.summary(child, v.Name)
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropDescription, v.Age+" - "+v.Description)
		event.Props.SetText(config.PropCategories, config.ICalCategory)

		start := ical.NewProp(config.PropDTStart)
		start.SetDate(v.DueDate.Time())
		event.Props.Set(start)

		if reminder != "" {
			addAlarm(event, reminder, summary)
		}
		out = append(out, event)
	}
	return out
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value: SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// calendarDate reads the BDAY forms that carry a year. Year-less --MM-DD
// values cannot anchor a schedule and are rejected.
func calendarDate(value string) (datecalc.Date, error) {
	layouts := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return datecalc.FromTime(t), nil
		}
	}
	return datecalc.Date{}, errors.New(config.ErrDateParse)
}
