package server

import (
	"fmt"
	"net/http"

	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/engine"
	"github.com/tartampluch/go-jyoti/internal/nis"
)

type pregnancyResponse struct {
	LMP   dateView                `json:"lmp"`
	EDD   dateView                `json:"edd"`
	Age   datecalc.GestationalAge `json:"gestational_age"`
	Text  string                  `json:"gestational_age_text"`
	Today dateView                `json:"today"`
}

// handlePregnancy accepts exactly one of lmp, edd or weeks(+days).
func (s *Server) handlePregnancy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		p   engine.Pregnancy
		err error
	)
	switch {
	case q.Has(config.ParamLMP):
		p, err = s.svc.PregnancyFromLMP(q.Get(config.ParamLMP))
	case q.Has(config.ParamEDD):
		p, err = s.svc.PregnancyFromEDD(q.Get(config.ParamEDD))
	case q.Has(config.ParamWeeks):
		p, err = s.svc.PregnancyFromAge(q.Get(config.ParamWeeks), q.Get(config.ParamDays))
	default:
		s.writeCode(w, r, http.StatusBadRequest, config.CodeMissingInput, config.ParamLMP)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pregnancyResponse{
		LMP:   viewOf(p.LMP),
		EDD:   viewOf(p.EDD),
		Age:   p.Age,
		Text:  s.ageText(s.lang(r), p.Age),
		Today: viewOf(s.svc.Today()),
	})
}

type eventView struct {
	Ordinal       int        `json:"ordinal"`
	Name          string     `json:"name"`
	LocalizedName string     `json:"localized_name"`
	Label         string     `json:"label"`
	Age           string     `json:"age"`
	Description   string     `json:"description"`
	DueDate       dateView   `json:"due_date"`
	Offset        nis.Offset `json:"offset"`
	DueToday      bool       `json:"due_today"`
}

type scheduleResponse struct {
	Birth        dateView    `json:"birth"`
	TableVersion string      `json:"table_version"`
	Events       []eventView `json:"events"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	birth, events, err := s.svc.Schedule(r.URL.Query().Get(config.ParamBirth))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lang := s.lang(r)
	today := s.svc.Today()
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		label := e.Name
		if lang != config.DefaultLanguage && e.LocalizedName != "" {
			label = e.LocalizedName
		}
		views = append(views, eventView{
			Ordinal:       e.Ordinal,
			Name:          e.Name,
			LocalizedName: e.LocalizedName,
			Label:         label,
			Age:           e.Age,
			Description:   e.Description,
			DueDate:       viewOf(e.DueDate),
			Offset:        e.Offset,
			DueToday:      e.DueDate.Equal(today),
		})
	}

	version := nis.Default().Version
	if s.svc.Table != nil {
		version = s.svc.Table.Version
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Birth: viewOf(birth), TableVersion: version, Events: views})
}

func (s *Server) handleScheduleFHIR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	patient := q.Get(config.ParamPatient)
	if patient == "" {
		s.writeCode(w, r, http.StatusBadRequest, config.CodeMissingInput, config.ParamPatient)
		return
	}
	doc, err := s.svc.Forecast(config.FHIRPatientPrefix+patient, q.Get(config.ParamBirth))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONType(w, http.StatusOK, config.MimeFHIRJSON, doc)
}

type differenceResponse struct {
	Start     dateView `json:"start"`
	End       dateView `json:"end"`
	Years     int      `json:"years"`
	Months    int      `json:"months"`
	Days      int      `json:"days"`
	Negative  bool     `json:"negative"`
	TotalDays int      `json:"total_days"`
	Text      string   `json:"text"`
}

func (s *Server) handleDifference(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := s.svc.Difference(q.Get(config.ParamStart), q.Get(config.ParamEnd))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Both parse: Difference validated them.
	start, _ := engine.ParseDate(config.ParamStart, q.Get(config.ParamStart))
	end, _ := engine.ParseDate(config.ParamEnd, q.Get(config.ParamEnd))

	writeJSON(w, http.StatusOK, differenceResponse{
		Start:     viewOf(start),
		End:       viewOf(end),
		Years:     d.Years,
		Months:    d.Months,
		Days:      d.Days,
		Negative:  d.Negative,
		TotalDays: datecalc.DaysBetween(end, start),
		Text:      s.durationText(s.lang(r), d.Years, d.Months, d.Days),
	})
}

type offsetResponse struct {
	Date   dateView `json:"date"`
	Years  int      `json:"years"`
	Months int      `json:"months"`
	Days   int      `json:"days"`
	Result dateView `json:"result"`
}

// handleOffset reads the amounts leniently: blank or non-numeric is 0.
func (s *Server) handleOffset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	years := engine.ParseInt(q.Get(config.ParamYears))
	months := engine.ParseInt(q.Get(config.ParamMonths))
	days := engine.ParseInt(q.Get(config.ParamDays))

	res, err := s.svc.Offset(q.Get(config.ParamDate), years, months, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	base, _ := engine.ParseDate(config.ParamDate, q.Get(config.ParamDate))

	writeJSON(w, http.StatusOK, offsetResponse{
		Date:   viewOf(base),
		Years:  years,
		Months: months,
		Days:   days,
		Result: viewOf(res),
	})
}

type daysResponse struct {
	Total  int    `json:"total"`
	Years  int    `json:"years"`
	Months int    `json:"months"`
	Days   int    `json:"days"`
	Text   string `json:"text"`
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	total := r.URL.Query().Get(config.ParamTotal)
	a, err := s.svc.DaysBreakdown(total)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daysResponse{
		Total:  engine.ParseInt(total),
		Years:  a.Years,
		Months: a.Months,
		Days:   a.Days,
		Text:   s.durationText(s.lang(r), a.Years, a.Months, a.Days),
	})
}

func (s *Server) ageText(lang string, age datecalc.GestationalAge) string {
	return fmt.Sprintf("%d %s %d %s",
		age.Weeks, s.tr.Msg(lang, config.TKeyUnitWeeks, nil),
		age.Days, s.tr.Msg(lang, config.TKeyUnitDays, nil),
	)
}

func (s *Server) durationText(lang string, years, months, days int) string {
	return fmt.Sprintf("%d %s %d %s %d %s",
		years, s.tr.Msg(lang, config.TKeyUnitYears, nil),
		months, s.tr.Msg(lang, config.TKeyUnitMonths, nil),
		days, s.tr.Msg(lang, config.TKeyUnitDays, nil),
	)
}

// promptLanguage is the language the quick prompts are always offered in.
const promptLanguage = "hi"

type dangerSignsResponse struct {
	Language     string   `json:"language"`
	Title        string   `json:"title"`
	Signs        []string `json:"signs"`
	Referral     string   `json:"referral"`
	QuickPrompts []string `json:"quick_prompts"`
	Greeting     string   `json:"greeting"`
	Tagline      string   `json:"tagline"`
}

// handleDangerSigns serves the fixed reference card and assistant
// starters. The quick prompts are always Hindi: they are sent to the
// assistant as typed.
func (s *Server) handleDangerSigns(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	msg := func(key string) string { return s.tr.Msg(lang, key, nil) }
	hi := func(key string) string { return s.tr.Msg(promptLanguage, key, nil) }

	writeJSON(w, http.StatusOK, dangerSignsResponse{
		Language: lang,
		Title:    msg(config.TKeyDangerTitle),
		Signs: []string{
			msg(config.TKeyDangerBleeding),
			msg(config.TKeyDangerSwelling),
			msg(config.TKeyDangerHeadache),
			msg(config.TKeyDangerMovement),
		},
		Referral: msg(config.TKeyDangerReferral),
		QuickPrompts: []string{
			hi(config.TKeyPromptDangers),
			hi(config.TKeyPromptVaccines),
			hi(config.TKeyPromptLMPToEDD),
		},
		Greeting: msg(config.TKeyAssistantGreet),
		Tagline:  msg(config.TKeyAssistantTag),
	})
}
