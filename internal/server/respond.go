package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/datecalc"
	"github.com/tartampluch/go-jyoti/internal/engine"
)

// dateView is how every date leaves the API.
type dateView struct {
	ISO     string `json:"iso"`
	Display string `json:"display"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Day     int    `json:"day"`
}

func viewOf(d datecalc.Date) dateView {
	return dateView{
		ISO:     d.String(),
		Display: d.Display(),
		Year:    d.Year,
		Month:   int(d.Month),
		Day:     d.Day,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// errorKeys maps input error codes to their translation keys.
var errorKeys = map[string]string{
	config.CodeInvalidDate:   config.TKeyErrInvalidDate,
	config.CodeFutureLMP:     config.TKeyErrFutureLMP,
	config.CodeFutureBirth:   config.TKeyErrFutureBirth,
	config.CodeInvalidNumber: config.TKeyErrInvalidNumber,
	config.CodeMissingInput:  config.TKeyErrMissingInput,
	config.CodeBadReminder:   config.TKeyErrBadReminder,
	config.CodeEmptyMessage:  config.TKeyErrEmptyMessage,
	config.CodeBodyTooLarge:  config.TKeyErrBodyTooLarge,
	config.CodeInvalidBody:   config.TKeyErrInvalidBody,
	config.CodeNotFound:      config.TKeyErrNotFound,
	config.CodeInternal:      config.TKeyErrInternal,
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeJSONType(w, status, config.MimeJSON, payload)
}

func writeJSONType(w http.ResponseWriter, status int, contentType string, payload any) {
	w.Header().Set(config.HeaderContentType, contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error(config.ErrEncodeResponse,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// writeCode sends the error envelope with a message in the request's language.
func (s *Server) writeCode(w http.ResponseWriter, r *http.Request, status int, code, field string) {
	key, ok := errorKeys[code]
	if !ok {
		key = config.TKeyErrInternal
	}
	msg := s.tr.Msg(s.lang(r), key, map[string]any{"Field": field})
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Field: field, Message: msg}})
}

// writeError maps err to a response: input errors are 400 (413 for
// oversized bodies), anything else is logged and reported as 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *engine.InputError
	if errors.As(err, &ie) {
		slog.Debug(config.MsgInputRejected,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyCode, ie.Code,
			config.LogKeyError, err,
			config.LogKeyRequestID, requestIDFrom(r),
		)
		s.writeCode(w, r, http.StatusBadRequest, ie.Code, ie.Field)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeCode(w, r, http.StatusRequestEntityTooLarge, config.CodeBodyTooLarge, "")
		return
	}

	slog.Error(config.ErrRequestFailed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyPath, r.URL.Path,
		config.LogKeyRequestID, requestIDFrom(r),
		config.LogKeyError, err,
	)
	s.writeCode(w, r, http.StatusInternalServerError, config.CodeInternal, "")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeCode(w, r, http.StatusNotFound, config.CodeNotFound, "")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeCode(w, r, http.StatusMethodNotAllowed, config.CodeNotFound, "")
}
