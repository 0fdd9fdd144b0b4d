package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/tartampluch/go-jyoti/internal/assistant"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/engine"
	"github.com/tartampluch/go-jyoti/internal/i18n"
	"github.com/tartampluch/go-jyoti/internal/nis"
	"github.com/tartampluch/go-jyoti/internal/server"
	"github.com/zalando/go-keyring"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
type ServeCmd struct {
	config.ServerSettings `embed:""`
}

func (c *ServeCmd) Run(rc *runContext) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tr, err := i18n.New(c.Language)
	if err != nil {
		return err
	}

	svc := *rc.svc
	svc.Fetcher = engine.NewHTTPFetcher()
	if c.ScheduleFile != "" {
		table, err := loadTable(c.ScheduleFile)
		if err != nil {
			return err
		}
		svc.Table = table
	}

	chat, speech := c.assistants(rc)
	srv := server.New(server.Options{
		Settings:   &c.ServerSettings,
		Service:    &svc,
		Translator: tr,
		Assistant:  chat,
		Speech:     speech,
	})
	return srv.Start(rc.ctx)
}

// assistants returns the Gemini assistant when an API key is available,
// and the offline stand-ins otherwise.
func (c *ServeCmd) assistants(rc *runContext) (assistant.Assistant, assistant.Transcriber) {
	key := resolveAPIKey(c.AssistantAPIKey)
	if key == "" {
		slog.Warn(config.MsgAssistantOff, config.LogKeyComponent, config.CompMain)
		return assistant.Offline{}, assistant.Unavailable{}
	}

	client, err := assistant.NewClient(rc.ctx, assistant.ClientConfig{APIKey: key, BaseURL: c.AssistantBaseURL})
	if err != nil {
		slog.Error(config.ErrAssistantInit,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return assistant.Offline{}, assistant.Unavailable{}
	}
	return assistant.NewGemini(client, c.AssistantModel, c.AssistantTimeout),
		assistant.NewGeminiTranscriber(client, c.AssistantModel, c.AssistantTimeout)
}

// resolveAPIKey prefers the flag (or JYOTI_ASSISTANT_API_KEY) over the
// OS keyring.
func resolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	key, err := keyring.Get(config.KeyringService, config.KeyringAPIKeyUser)
	if err != nil {
		slog.Debug(config.MsgKeyringMiss,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return ""
	}
	slog.Info(config.MsgKeyFromKeyring, config.LogKeyComponent, config.CompMain)
	return key
}

func loadTable(path string) (*nis.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrScheduleFile, err)
	}
	defer func() { _ = f.Close() }()

	table, err := nis.LoadTable(f)
	if err != nil {
		return nil, err
	}
	slog.Info(config.MsgTableLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, path,
		config.LogKeyVersion, table.Version,
	)
	return table, nil
}

// SetAPIKeyCmd saves the assistant key so it need not live in .env files.
type SetAPIKeyCmd struct {
	Key string `arg:"" help:"Gemini API key."`
}

func (c *SetAPIKeyCmd) Run(rc *runContext) error {
	if err := keyring.Set(config.KeyringService, config.KeyringAPIKeyUser, c.Key); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	slog.Info(config.MsgKeyStored, config.LogKeyComponent, config.CompMain)
	return nil
}

// PregnancyCmd is the ANC calculator. Exactly one input mode is used,
// checked in the order lmp, edd, weeks.
type PregnancyCmd struct {
	LMP   string `name:"lmp" help:"Last menstrual period (YYYY-MM-DD)."`
	EDD   string `name:"edd" help:"Expected delivery date (YYYY-MM-DD)."`
	Weeks string `help:"Current gestational age, full weeks."`
	Days  string `help:"Current gestational age, extra days (0-6)."`
}

func (c *PregnancyCmd) Run(rc *runContext) error {
	var (
		p   engine.Pregnancy
		err error
	)
	switch {
	case c.LMP != "":
		p, err = rc.svc.PregnancyFromLMP(c.LMP)
	case c.EDD != "":
		p, err = rc.svc.PregnancyFromEDD(c.EDD)
	case c.Weeks != "":
		p, err = rc.svc.PregnancyFromAge(c.Weeks, c.Days)
	default:
		err = &engine.InputError{Code: config.CodeMissingInput, Field: config.ParamLMP}
	}
	if err != nil {
		return err
	}
	return printJSON(rc.out, p)
}

// ScheduleCmd prints the vaccination schedule for a birth date.
type ScheduleCmd struct {
	Birth    string `arg:"" help:"Date of birth (YYYY-MM-DD)."`
	Format   string `help:"Output format." enum:"json,ics,fhir" default:"json"`
	Name     string `help:"Child's name, used in calendar titles."`
	Patient  string `help:"FHIR patient id." default:"1"`
	Reminder string `help:"Alarm trigger for calendar events, empty for none." default:"-P1D"`
}

func (c *ScheduleCmd) Run(rc *runContext) error {
	switch c.Format {
	case config.FormatICS:
		birth, _, err := rc.svc.Schedule(c.Birth)
		if err != nil {
			return err
		}
		data, err := rc.svc.ScheduleCalendar(c.Name, birth, c.Reminder)
		if err != nil {
			return err
		}
		_, err = rc.out.Write(data)
		return err
	case config.FormatFHIR:
		doc, err := rc.svc.Forecast(config.FHIRPatientPrefix+c.Patient, c.Birth)
		if err != nil {
			return err
		}
		return printJSON(rc.out, doc)
	default:
		_, events, err := rc.svc.Schedule(c.Birth)
		if err != nil {
			return err
		}
		return printJSON(rc.out, events)
	}
}

// ToolsCmd groups the date utilities.
type ToolsCmd struct {
	Diff   DiffCmd   `cmd:"" help:"Exact years, months and days between two dates."`
	Offset OffsetCmd `cmd:"" help:"Add years, months and days to a date."`
	Days   DaysCmd   `cmd:"" help:"Break a day count into approximate years, months and days."`
}

type DiffCmd struct {
	Start string `arg:""`
	End   string `arg:""`
}

func (c *DiffCmd) Run(rc *runContext) error {
	d, err := rc.svc.Difference(c.Start, c.End)
	if err != nil {
		return err
	}
	return printJSON(rc.out, d)
}

type OffsetCmd struct {
	Date   string `arg:""`
	Years  int    `help:"Years to add (negative to subtract)."`
	Months int    `help:"Months to add."`
	Days   int    `help:"Days to add."`
}

func (c *OffsetCmd) Run(rc *runContext) error {
	d, err := rc.svc.Offset(c.Date, c.Years, c.Months, c.Days)
	if err != nil {
		return err
	}
	return printJSON(rc.out, d)
}

type DaysCmd struct {
	Total string `arg:""`
}

func (c *DaysCmd) Run(rc *runContext) error {
	a, err := rc.svc.DaysBreakdown(c.Total)
	if err != nil {
		return err
	}
	return printJSON(rc.out, a)
}

// ExportCmd reads children from a local .vcf file or a CardDAV/WebDAV URL
// and writes one merged vaccination calendar.
type ExportCmd struct {
	Source   string `arg:"" help:"Path or http(s) URL of the address book."`
	User     string `help:"Username for the address book server."`
	Password string `help:"Password for the address book server."`
	Output   string `short:"o" help:"Output file, - for stdout." default:"-"`
	Reminder string `help:"Alarm trigger for calendar events, empty for none." default:"-P1D"`
}

func (c *ExportCmd) Run(rc *runContext) error {
	cfg := engine.ImportConfig{Mode: config.SourceModeLocal, LocalPath: c.Source, Reminder: c.Reminder}
	if u, err := url.Parse(c.Source); err == nil && (u.Scheme == config.SchemeHTTP || u.Scheme == config.SchemeHTTPS) {
		cfg = engine.ImportConfig{
			Mode:     config.SourceModeWeb,
			Web:      engine.RemoteSource{URL: c.Source, User: c.User, Pass: c.Password},
			Reminder: c.Reminder,
		}
	}

	svc := *rc.svc
	if svc.Fetcher == nil {
		svc.Fetcher = engine.NewHTTPFetcher()
	}
	res, err := svc.RunImport(rc.ctx, cfg)
	if err != nil {
		return err
	}
	return writeOutput(rc.out, c.Output, res.Calendar)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == config.StdoutPath {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	slog.Info(config.MsgExportWritten,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyOutput, path,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}
