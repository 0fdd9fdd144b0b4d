package assistant

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	gcache "github.com/patrickmn/go-cache"
	"github.com/tartampluch/go-jyoti/internal/config"
)

// Message roles, as shown in the chat transcript.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one bubble of the transcript.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Sessions keeps chat transcripts in memory. Idle sessions expire after
// the TTL; nothing is written to disk.
type Sessions struct {
	mu       sync.Mutex // serializes read-modify-write of a transcript
	cache    *gcache.Cache
	maxTurns int
}

// NewSessions keeps at most maxTurns question/answer pairs per session.
func NewSessions(ttl time.Duration, maxTurns int) *Sessions {
	if maxTurns <= 0 {
		maxTurns = config.DefaultSessionMaxTurns
	}
	return &Sessions{
		cache:    gcache.New(ttl, config.CacheCleanup),
		maxTurns: maxTurns,
	}
}

// History returns a copy of the transcript of id.
func (s *Sessions) History(id string) ([]Message, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return slices.Clone(v.([]Message)), true
}

// Append adds msgs to session id and refreshes its expiry. An empty,
// malformed or expired id starts a new session; the id actually used is
// returned with the updated transcript.
func (s *Sessions) Append(id string, msgs ...Message) (string, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []Message
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	} else if v, ok := s.cache.Get(id); ok {
		history = slices.Clone(v.([]Message))
	}

	history = append(history, msgs...)
	if limit := s.maxTurns * 2; len(history) > limit {
		history = history[len(history)-limit:]
	}
	s.cache.SetDefault(id, history)
	return id, slices.Clone(history)
}

// Delete forgets a session.
func (s *Sessions) Delete(id string) {
	s.cache.Delete(id)
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	return s.cache.ItemCount()
}

// Exchange is the result of one chat turn.
type Exchange struct {
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	History   []Message `json:"history"`
}

// Chat pairs an Assistant with session memory.
type Chat struct {
	Assistant Assistant
	Sessions  *Sessions
	Now       func() time.Time
}

// Ask forwards prompt to the assistant and records both sides. The model
// only sees the current question.
func (c *Chat) Ask(ctx context.Context, sessionID, prompt string) Exchange {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	asked := Message{Role: RoleUser, Text: prompt, At: now()}
	reply := c.Assistant.Reply(ctx, prompt)
	answered := Message{Role: RoleBot, Text: reply, At: now()}

	id, history := c.Sessions.Append(sessionID, asked, answered)
	return Exchange{SessionID: id, Reply: reply, History: history}
}
