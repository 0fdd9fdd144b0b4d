package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/nis"
)

// ImportConfig selects the address book to read children from.
type ImportConfig struct {
	Mode      string       // config.SourceModeLocal, SourceModeWeb or SourceModeUpload
	LocalPath string       // .vcf file on disk
	Web       RemoteSource // CardDAV / WebDAV address book
	Reader    io.Reader    // uploaded vCard stream
	Reminder  string       // ISO8601 duration string (e.g., "-P1D"), empty for none
}

// Beneficiary is a child found in the address book, with its schedule.
type Beneficiary struct {
	UID       string        `json:"uid"`
	Name      string        `json:"name"`
	BirthDate datecalc.Date `json:"birth_date"`
	Events    []nis.Event   `json:"events"`

	// NextDue is the first vaccination due today or later; nil once the
	// schedule is complete.
	NextDue *nis.Event `json:"next_due,omitempty"`
}

// ImportResult is the outcome of RunImport.
type ImportResult struct {
	Calendar      []byte        `json:"-"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	DueToday      int           `json:"due_today"`
}

type importStats struct{ processed, children, today int }

// RunImport reads children from an address book, builds their schedules
// and merges every vaccination into a single calendar.
func (s *Service) RunImport(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	if err := ValidateReminder(cfg.Reminder); err != nil {
		return nil, err
	}

	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := s.openSource(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.importCards(ctx, reader, cfg.Reminder)
	if err == nil {
		log.Debug(config.MsgImportDone, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return res, err
}

func (s *Service) openSource(ctx context.Context, cfg ImportConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.Web.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if s.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return s.Fetcher.Fetch(ctx, cfg.Web)
	case config.SourceModeUpload:
		if cfg.Reader == nil {
			return nil, errors.New(config.ErrReaderMissing)
		}
		return io.NopCloser(newCappedReader(cfg.Reader, config.MaxImportSize)), nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

func (s *Service) importCards(ctx context.Context, r io.Reader, reminder string) (*ImportResult, error) {
	cal := newCalendar()
	stamp := stampProp(s.Clock)
	now := s.Today()
	table := s.table()

	src := &stickyReader{r: r}
	decoder := vcard.NewDecoder(src)
	var stats importStats
	var children []Beneficiary

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if src.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, src.err)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going: one broken card must not hide the rest of the book.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, err := calendarDate(bday.Value)
		if err != nil || birth.After(now) {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}
		stats.children++

		// FN > N > fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		events := table.Generate(birth)
		child := Beneficiary{
			UID:       childUID(name, birth),
			Name:      name,
			BirthDate: birth,
			Events:    events,
			NextDue:   nextDue(events, now),
		}
		children = append(children, child)

		for _, e := range events {
			if e.DueDate.Equal(now) {
				stats.today++
				slog.Info(config.MsgVaccineToday,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyName, name,
					config.LogKeyVaccine, e.Name)
			}
		}

		for _, e := range s.vaccinationEvents(name, birth, events, reminder) {
			e.Props.Set(stamp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	data, err := encodeCalendar(cal)
	if err != nil {
		return nil, err
	}

	sortByNextDue(children)
	logImport(stats)
	return &ImportResult{Calendar: data, Beneficiaries: children, DueToday: stats.today}, nil
}

// stickyReader remembers the first read failure, so that a broken stream
// is told apart from a malformed card.
type stickyReader struct {
	r   io.Reader
	err error
}

func (s *stickyReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

// nextDue returns the first event due on or after today.
func nextDue(events []nis.Event, today datecalc.Date) *nis.Event {
	for i := range events {
		if !events[i].DueDate.Before(today) {
			e := events[i]
			return &e
		}
	}
	return nil
}

// sortByNextDue puts the most urgent child first; completed schedules go last.
func sortByNextDue(children []Beneficiary) {
	slices.SortStableFunc(children, func(a, b Beneficiary) int {
		switch {
		case a.NextDue == nil && b.NextDue == nil:
			return cmp.Compare(a.Name, b.Name)
		case a.NextDue == nil:
			return 1
		case b.NextDue == nil:
			return -1
		}
		if c := a.NextDue.DueDate.Compare(b.NextDue.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

func logImport(stats importStats) {
	slog.Info(config.MsgImportSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.children),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}
