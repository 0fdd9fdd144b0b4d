package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gcache "github.com/patrickmn/go-cache"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/engine"
)

// cacheItem stores a rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

func newCacheItem(data []byte) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
}

// localized returns a copy of the engine whose event titles are in lang.
func (s *Server) localized(lang string) *engine.Service {
	svc := *s.svc
	svc.FormatSummary = func(child, vaccine string) string {
		if child == "" {
			return vaccine
		}
		return s.tr.Msg(lang, config.TKeyEvtVaccination, map[string]any{"Name": child, "Vaccine": vaccine})
	}
	return &svc
}

// reminderParam returns the alarm trigger requested. An absent parameter
// means the default reminder, an empty one means no alarm.
func reminderParam(r *http.Request) string {
	q := r.URL.Query()
	if !q.Has(config.ParamReminder) {
		return config.DefaultReminder
	}
	return strings.TrimSpace(q.Get(config.ParamReminder))
}

// handleScheduleICS serves one child's schedule as an iCalendar download.
// Rendered feeds are cached per request so that ETags stay stable.
func (s *Server) handleScheduleICS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lang := s.lang(r)
	name := strings.TrimSpace(q.Get(config.ParamName))
	reminder := reminderParam(r)

	birth, _, err := s.svc.Schedule(q.Get(config.ParamBirth))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := engine.ValidateReminder(reminder); err != nil {
		s.writeError(w, r, err)
		return
	}

	key := strings.Join([]string{lang, birth.String(), name, reminder}, "|")
	var item *cacheItem
	if cached, ok := s.ics.Get(key); ok {
		item = cached.(*cacheItem)
		slog.Debug(config.MsgICSCacheHit,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyETag, item.etag,
		)
	} else {
		data, err := s.localized(lang).ScheduleCalendar(name, birth, reminder)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		item = newCacheItem(data)
		s.ics.Set(key, item, gcache.DefaultExpiration)
		slog.Debug(config.MsgCacheUpdated,
			config.LogKeyComponent, config.CompServer,
			config.LogKeySizeBytes, len(data),
			config.LogKeyETag, item.etag,
		)
	}

	serveCalendar(w, r, item, config.ScheduleFileName)
}

func serveCalendar(w http.ResponseWriter, r *http.Request, item *cacheItem, fileName string) {
	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.FormatAttachment, fileName))
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleImport reads an uploaded vCard address book. It answers with the
// merged calendar, or with the beneficiary list when format=json.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	reminder := reminderParam(r)
	if err := engine.ValidateReminder(reminder); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.localized(s.lang(r)).RunImport(r.Context(), engine.ImportConfig{
		Mode:     config.SourceModeUpload,
		Reader:   http.MaxBytesReader(w, r.Body, config.MaxImportSize),
		Reminder: reminder,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get(config.ParamFormat) == config.FormatJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)
	w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.FormatAttachment, config.ImportFileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Calendar); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
