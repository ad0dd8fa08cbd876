package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/safetybuddy/backend/internal/model/chat"
	"github.com/safetybuddy/backend/internal/model/knowledge"
)

// ErrSessionNotFound reports a mutation against an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Store owns every conversation context, keyed by session id. All mutation
// goes through Store methods under one mutex; readers receive copies, so no
// lock is ever held across a provider call.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Context
}

// NewStore bootstraps the in-memory conversation store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*chat.Context)}
}

// GetOrCreate resolves a session, minting a fresh uuid when no id is
// supplied. An unknown id creates an empty context under that id.
func (s *Store) GetOrCreate(sessionID string) chat.Context {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		ctx = &chat.Context{
			SessionID: sessionID,
			Messages:  make([]chat.Message, 0, 16),
		}
		s.sessions[sessionID] = ctx
	}
	return copyContext(ctx)
}

// Get returns a copy of the session context, if it exists.
func (s *Store) Get(sessionID string) (chat.Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		return chat.Context{}, false
	}
	return copyContext(ctx), true
}

// Append adds messages in the given order, assigning ids and timestamps to
// any message missing them.
func (s *Store) Append(sessionID string, messages ...chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	for _, msg := range messages {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		ctx.Messages = append(ctx.Messages, msg)
	}
	return nil
}

// MarkEmergency latches the session's emergency flag; it never resets.
func (s *Store) MarkEmergency(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	ctx.EmergencyDetected = true
	return nil
}

// SetCurrentInjury records the most recent knowledge match for the session.
func (s *Store) SetCurrentInjury(sessionID string, injury knowledge.Injury) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	ctx.CurrentInjury = &injury
	return nil
}

// Clear removes the session context entirely.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func copyContext(ctx *chat.Context) chat.Context {
	out := *ctx
	out.Messages = append([]chat.Message(nil), ctx.Messages...)
	if ctx.CurrentInjury != nil {
		injury := *ctx.CurrentInjury
		out.CurrentInjury = &injury
	}
	return out
}
