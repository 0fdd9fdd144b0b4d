package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerSettings are the runtime options of the HTTP API. They are bound
// to CLI flags by kong and, through kong.DefaultEnvars, to JYOTI_* variables.
type ServerSettings struct {
	Listen           string        `help:"Address to bind the HTTP server to." default:"127.0.0.1"`
	Port             string        `help:"HTTP port." default:"18080"`
	Language         string        `help:"Fallback language when the client expresses no preference." enum:"en,hi" default:"en"`
	CORSOrigins      []string      `name:"cors-origins" help:"Allowed CORS origins." default:"*" sep:","`
	AssistantModel   string        `help:"Hosted model used by the assistant." default:"gemini-3-flash-preview"`
	AssistantAPIKey  string        `name:"assistant-api-key" help:"API key for the assistant (falls back to the OS keyring)."`
	AssistantBaseURL string        `name:"assistant-base-url" help:"Override the assistant endpoint (testing, proxies)."`
	AssistantTimeout time.Duration `help:"Timeout of a single assistant call." default:"30s"`
	SessionTTL       time.Duration `name:"session-ttl" help:"Idle lifetime of an in-memory chat session." default:"2h"`
	ScheduleFile     string        `help:"Optional immunization table replacing the embedded one." type:"existingfile"`
}

// Addr returns host:port.
func (s *ServerSettings) Addr() string {
	return net.JoinHostPort(s.Listen, s.Port)
}

// Validate checks values kong cannot express in tags.
func (s *ServerSettings) Validate() error {
	if s == nil {
		return errors.New(ErrSettingsNil)
	}
	if s.Port == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}
	if s.SessionTTL <= 0 {
		return errors.New(ErrSessionTTL)
	}
	return nil
}

// LoadDotenv reads an optional .env file into the process environment
// before flags are parsed. A missing file is not an error.
func LoadDotenv(path string) {
	if err := godotenv.Load(path); err != nil {
		slog.Debug(MsgDotenvMissing,
			LogKeyComponent, CompConfig,
			LogKeyFile, path,
			LogKeyError, err,
		)
	}
}
