package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-jyoti/internal/config"
)

type ctxKey int

const (
	langKey ctxKey = iota
	requestIDKey
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestMiddleware tags each request with an id and a negotiated
// language, then logs it once the handler returns.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(config.HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(config.HeaderRequestID, id)

		// ?lang= wins over Accept-Language.
		lang := s.tr.Negotiate(r.URL.Query().Get(config.ParamLang), r.Header.Get(config.HeaderAcceptLanguage))

		ctx := context.WithValue(r.Context(), langKey, lang)
		ctx = context.WithValue(ctx, requestIDKey, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		slog.InfoContext(ctx, config.MsgRequest,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyPath, r.URL.Path,
			config.LogKeyStatus, rec.status,
			config.LogKeyLang, lang,
			config.LogKeyRequestID, id,
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	})
}

// lang returns the language picked by requestMiddleware. Handlers mux
// reaches without middleware (404, 405) negotiate on the spot.
func (s *Server) lang(r *http.Request) string {
	if lang, ok := r.Context().Value(langKey).(string); ok {
		return lang
	}
	return s.tr.Negotiate(r.URL.Query().Get(config.ParamLang), r.Header.Get(config.HeaderAcceptLanguage))
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
