package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps per-session conversation history in memory, bounded to the
// most recent exchanges. Sessions exist only for the lifetime of the
// process; callers inject a single Store rather than reaching for a global.
//
// All fields are guarded by mu. Methods never call out while holding the
// lock, so a Store method can safely be called from handlers, tools and
// background work alike.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*state
	maxExchanges int
	logger       *slog.Logger
}

// NewStore creates a Store that retains the last maxExchanges
// question/answer pairs per session.
func NewStore(maxExchanges int, logger *slog.Logger) *Store {
	if maxExchanges <= 0 {
		maxExchanges = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions:     make(map[string]*state),
		maxExchanges: maxExchanges,
		logger:       logger,
	}
}

// Create allocates a new empty session and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	s.sessions[id] = &state{createdAt: now, updatedAt: now}
	s.mu.Unlock()

	s.logger.Debug("created session", "session_id", id)
	return id
}

// Append records one completed exchange, creating the session if the id is
// unknown. The history is trimmed to the configured bound, oldest first.
func (s *Store) Append(id, question, answer string) {
	now := time.Now()
	ex := Exchange{Question: question, Answer: answer, At: now}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		st = &state{createdAt: now}
		s.sessions[id] = st
	}
	st.exchanges = append(st.exchanges, ex)
	if overflow := len(st.exchanges) - s.maxExchanges; overflow > 0 {
		st.exchanges = append([]Exchange(nil), st.exchanges[overflow:]...)
	}
	st.updatedAt = now
}

// History returns a copy of the session's retained exchanges, oldest first.
// An unknown id yields an empty history.
func (s *Store) History(id string) []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return append([]Exchange(nil), st.exchanges...)
}

// FormatHistory renders the retained exchanges as alternating User and
// Assistant lines for inclusion in a prompt. Empty history yields "".
func (s *Store) FormatHistory(id string) string {
	history := s.History(id)
	if len(history) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, ex := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "User: %s\nAssistant: %s\n", ex.Question, ex.Answer)
	}
	return sb.String()
}

// Delete removes a session and its history.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
