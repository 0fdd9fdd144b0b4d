// Package assistant connects the chat and voice features to the hosted
// Gemini model. Failures never reach the user as errors: Reply always
// returns text, the fixed bilingual fallback when the model cannot answer.
package assistant

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tartampluch/go-jyoti/internal/config"
	"google.golang.org/genai"
)

// Persona is the fixed system instruction sent with every question.
//
//go:embed persona.txt
var Persona string

// Assistant answers one question.
type Assistant interface {
	Reply(ctx context.Context, prompt string) string
}

// Offline is used when no API key is configured.
type Offline struct{}

// Reply always returns the fallback message.
func (Offline) Reply(context.Context, string) string {
	return config.AssistantFallback
}

// ClientConfig holds what is needed to reach the model API.
type ClientConfig struct {
	APIKey     string
	BaseURL    string // empty for the public endpoint
	HTTPClient *http.Client
}

// NewClient builds a Gemini API client.
func NewClient(ctx context.Context, cfg ClientConfig) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(config.ErrAPIKeyMissing)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAssistantInit, err)
	}
	return client, nil
}

// Gemini answers with a hosted model, one independent request per question.
type Gemini struct {
	models      *genai.Models
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGemini wraps client. A zero timeout uses config.AssistantTimeout.
func NewGemini(client *genai.Client, model string, timeout time.Duration) *Gemini {
	if model == "" {
		model = config.DefaultAssistantModel
	}
	if timeout <= 0 {
		timeout = config.AssistantTimeout
	}
	return &Gemini{
		models:      client.Models,
		model:       model,
		temperature: config.DefaultTemperature,
		timeout:     timeout,
	}
}

// Reply sends prompt with the Jyoti persona.
func (g *Gemini) Reply(ctx context.Context, prompt string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	log := slog.With(
		config.LogKeyComponent, config.CompAssistant,
		config.LogKeyModel, g.model,
	)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(Persona, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	})
	if err != nil {
		log.ErrorContext(ctx, config.ErrAssistantCall, config.LogKeyError, err)
		return config.AssistantFallback
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		log.ErrorContext(ctx, config.ErrAssistantEmpty)
		return config.AssistantFallback
	}

	log.DebugContext(ctx, config.MsgAssistantReply, config.LogKeyChars, len(text))
	return text
}
