package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/tartampluch/go-jyoti/internal/config"
)

const fieldMessage = "message"

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChat relays one question to the assistant. The assistant never
// fails the request: outages come back as the localized fallback reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxJSONBodySize)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, err)
			return
		}
		s.writeCode(w, r, http.StatusBadRequest, config.CodeInvalidBody, "")
		return
	}

	prompt := strings.TrimSpace(req.Message)
	if prompt == "" {
		s.writeCode(w, r, http.StatusBadRequest, config.CodeEmptyMessage, fieldMessage)
		return
	}
	if utf8.RuneCountInString(prompt) > config.MaxChatMessage {
		s.writeCode(w, r, http.StatusRequestEntityTooLarge, config.CodeBodyTooLarge, fieldMessage)
		return
	}

	ex := s.chat.Ask(r.Context(), req.SessionID, prompt)
	slog.Debug(config.MsgAssistantReply,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySession, ex.SessionID,
		config.LogKeyChars, utf8.RuneCountInString(ex.Reply),
		config.LogKeyRequestID, requestIDFrom(r),
	)
	writeJSON(w, http.StatusOK, ex)
}

// handleChatDelete forgets a transcript. Unknown ids are not an error.
func (s *Server) handleChatDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[config.PathSessionID]
	s.chat.Sessions.Delete(id)
	slog.Debug(config.MsgSessionCleared,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySession, id,
		config.LogKeySessions, s.chat.Sessions.Len(),
		config.LogKeyRequestID, requestIDFrom(r),
	)
	w.WriteHeader(http.StatusNoContent)
}

type transcribeResponse struct {
	Available  bool   `json:"available"`
	Transcript string `json:"transcript"`
	Recognized bool   `json:"recognized"`
}

// handleTranscribe turns a voice question into text. The body is the raw
// recording; its Content-Type is passed to the model.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !s.speech.Available() {
		slog.Debug(config.MsgSpeechOff, config.LogKeyComponent, config.CompServer)
		writeJSON(w, http.StatusOK, transcribeResponse{})
		return
	}

	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, config.MaxAudioSize))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mime := r.Header.Get(config.HeaderContentType)
	if mime == "" {
		mime = http.DetectContentType(audio)
	}
	text, ok, err := s.speech.Transcribe(r.Context(), audio, mime)
	if err != nil {
		slog.Warn(config.ErrTranscribeCall,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, requestIDFrom(r),
			config.LogKeyError, err,
		)
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Available: true, Transcript: text, Recognized: ok && err == nil})
}
