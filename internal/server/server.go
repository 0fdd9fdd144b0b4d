// Package server exposes the ANC calculator, the immunization schedule,
// the date tools and the assistant as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	gcache "github.com/patrickmn/go-cache"
	"github.com/tartampluch/go-jyoti/internal/assistant"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/engine"
	"github.com/tartampluch/go-jyoti/internal/i18n"
	"github.com/tartampluch/go-jyoti/internal/profile"
)

// Options wires the server's collaborators. Only Settings, Service and
// Translator are required.
type Options struct {
	Settings   *config.ServerSettings
	Service    *engine.Service
	Translator *i18n.Translator
	Assistant  assistant.Assistant   // assistant.Offline when nil
	Speech     assistant.Transcriber // assistant.Unavailable when nil
	Profiles   profile.Store         // in-memory when nil
}

// Server serves the HTTP API.
type Server struct {
	settings *config.ServerSettings
	svc      *engine.Service
	tr       *i18n.Translator
	chat     *assistant.Chat
	speech   assistant.Transcriber
	profiles profile.Store

	// ics holds rendered calendars keyed by request, so that repeated
	// downloads keep the same DTSTAMP and ETag.
	ics *gcache.Cache
}

// New builds a Server.
func New(opts Options) *Server {
	a := opts.Assistant
	if a == nil {
		a = assistant.Offline{}
	}
	speech := opts.Speech
	if speech == nil {
		speech = assistant.Unavailable{}
	}
	profiles := opts.Profiles
	if profiles == nil {
		profiles = profile.NewMemoryStore()
	}
	ttl := opts.Settings.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}

	return &Server{
		settings: opts.Settings,
		svc:      opts.Service,
		tr:       opts.Translator,
		chat: &assistant.Chat{
			Assistant: a,
			Sessions:  assistant.NewSessions(ttl, config.DefaultSessionMaxTurns),
		},
		speech:   speech,
		profiles: profiles,
		ics:      gcache.New(config.ICSCacheTTL, config.CacheCleanup),
	}
}

// Handler returns the routed API wrapped in recovery, compression and CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	r.Use(s.requestMiddleware)

	r.HandleFunc(config.RouteHealth, s.handleHealth).Methods(http.MethodGet, http.MethodHead)

	api := r.PathPrefix(config.RouteAPIPrefix).Subrouter()
	api.HandleFunc(config.RoutePregnancy, s.handlePregnancy).Methods(http.MethodGet)
	api.HandleFunc(config.RouteSchedule, s.handleSchedule).Methods(http.MethodGet)
	api.HandleFunc(config.RouteScheduleICS, s.handleScheduleICS).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc(config.RouteScheduleFHIR, s.handleScheduleFHIR).Methods(http.MethodGet)
	api.HandleFunc(config.RouteImport, s.handleImport).Methods(http.MethodPost)
	api.HandleFunc(config.RouteToolDiff, s.handleDifference).Methods(http.MethodGet)
	api.HandleFunc(config.RouteToolOffset, s.handleOffset).Methods(http.MethodGet)
	api.HandleFunc(config.RouteToolDays, s.handleDays).Methods(http.MethodGet)
	api.HandleFunc(config.RouteDangerSigns, s.handleDangerSigns).Methods(http.MethodGet)
	api.HandleFunc(config.RouteChat, s.handleChat).Methods(http.MethodPost)
	api.HandleFunc(config.RouteChatSession, s.handleChatDelete).Methods(http.MethodDelete)
	api.HandleFunc(config.RouteTranscribe, s.handleTranscribe).Methods(http.MethodPost)
	api.HandleFunc(config.RouteProfileImage, s.handleProfileGet).Methods(http.MethodGet)
	api.HandleFunc(config.RouteProfileImage, s.handleProfilePut).Methods(http.MethodPut)
	api.HandleFunc(config.RouteProfileImage, s.handleProfileDelete).Methods(http.MethodDelete)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.settings.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{config.HeaderContentType, config.HeaderAcceptLanguage, config.HeaderRequestID, config.HeaderIfNoneMatch}),
		handlers.ExposedHeaders([]string{config.HeaderETag, config.HeaderRequestID, config.HeaderContentDisposition}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(handlers.CompressHandler(cors(r)))
}

// Start listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.settings.Validate(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.settings.Addr())
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the API on ln until ctx is cancelled, then drains in-flight
// requests for up to config.ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       config.ServerReadTimeout,
		ReadHeaderTimeout: config.ServerReadTimeout,
		WriteTimeout:      config.ServerWriteTimeout,
		IdleTimeout:       config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, ln.Addr().String(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		// The parent is already cancelled; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// recoveryLogger routes gorilla's panic reports to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error(config.ErrPanicRecovered,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyError, fmt.Sprint(v...),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": config.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
