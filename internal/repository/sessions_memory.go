package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"innovators-bot/internal/domain"
)

// MemorySessions is the process-local Session Store for single-instance
// deployments. It mirrors the DynamoDB store's contract, including the
// 30-minute sliding expiry.
type MemorySessions struct {
	mu      sync.Mutex
	entries map[string]memorySessionEntry
	now     func() time.Time
}

type memorySessionEntry struct {
	sess      *domain.Session
	expiresAt time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{entries: make(map[string]memorySessionEntry), now: time.Now}
}

func (s *MemorySessions) Get(_ context.Context, userID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, userID)
		return nil, nil
	}
	return cloneSession(e.sess), nil
}

func (s *MemorySessions) Put(_ context.Context, userID string, sess *domain.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("repository: Put session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = memorySessionEntry{
		sess:      cloneSession(sess),
		expiresAt: s.now().Add(sessionTTL),
	}
	return nil
}

func (s *MemorySessions) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// AppendChatHistory appends under the lock so concurrent writers can't
// lose each other's turns. Missing or non-chat sessions are a no-op.
func (s *MemorySessions) AppendChatHistory(_ context.Context, userID string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok || !s.now().Before(e.expiresAt) || e.sess.Mode != domain.ModeChat {
		return nil
	}
	e.sess.Chat.History = append(e.sess.Chat.History, msgs...)
	e.expiresAt = s.now().Add(sessionTTL)
	s.entries[userID] = e
	return nil
}

// cloneSession deep-copies a session so callers can't mutate stored
// state without going back through the store.
func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	out := &domain.Session{Mode: s.Mode}
	if s.Submit != nil {
		sub := *s.Submit
		out.Submit = &sub
	}
	if s.Help != nil {
		h := *s.Help
		h.History = append([]domain.ChatMessage(nil), s.Help.History...)
		out.Help = &h
	}
	if s.Chat != nil {
		c := &domain.ChatState{History: append([]domain.ChatMessage(nil), s.Chat.History...)}
		out.Chat = c
	}
	return out
}
