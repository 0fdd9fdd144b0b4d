package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-jyoti/internal/config"
	"google.golang.org/genai"
)

// Transcriber turns a recorded voice question into text.
type Transcriber interface {
	Available() bool
	// Transcribe returns ok=false when nothing usable was heard.
	Transcribe(ctx context.Context, audio []byte, mime string) (text string, ok bool, err error)
}

// Unavailable is the Transcriber of a deployment without speech support.
type Unavailable struct{}

// Available always reports false.
func (Unavailable) Available() bool { return false }

// Transcribe never hears anything.
func (Unavailable) Transcribe(context.Context, []byte, string) (string, bool, error) {
	return "", false, nil
}

const transcribeInstruction = "Transcribe this voice note verbatim. The speaker is a health worker " +
	"speaking Hindi, English or a mix of both (" + config.SpeechLanguage + "). " +
	"Reply with the transcript only, or nothing if there is no speech."

// GeminiTranscriber sends audio to a multimodal model.
type GeminiTranscriber struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// NewGeminiTranscriber shares client with the chat assistant.
func NewGeminiTranscriber(client *genai.Client, model string, timeout time.Duration) *GeminiTranscriber {
	if model == "" {
		model = config.DefaultAssistantModel
	}
	if timeout <= 0 {
		timeout = config.AssistantTimeout
	}
	return &GeminiTranscriber{models: client.Models, model: model, timeout: timeout}
}

// Available reports true; a client exists once the transcriber is built.
func (g *GeminiTranscriber) Available() bool { return true }

// Transcribe asks the model for a verbatim transcript of audio. Silence
// and empty audio give ok=false.
func (g *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mime string) (string, bool, error) {
	if len(audio) == 0 {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(transcribeInstruction),
		genai.NewPartFromBytes(audio, mime),
	}, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", config.ErrTranscribeCall, err)
	}

	text := strings.TrimSpace(resp.Text())
	slog.DebugContext(ctx, config.MsgAssistantReply,
		config.LogKeyComponent, config.CompAssistant,
		config.LogKeyChars, len(text),
	)
	return text, text != "", nil
}
