package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	contractx "github.com/wearly/concierge/agent/contract"
)

// MemoryStore mirrors the Redis store for tests and local runs. Sessions
// are stored as marshaled JSON so load/save semantics match.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	raw, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: session %s", contractx.ErrNotFound, sessionID)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	sess.Migrate()
	return &sess, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if sess.SchemaVersion <= 0 {
		sess.SchemaVersion = CurrentSchemaVersion
	}
	sess.Touch(s.now())

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.SessionID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, sessionID string, role contractx.Role, content string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.AppendMessage(role, content)
	return s.Save(ctx, sess)
}

func (s *MemoryStore) GetMessages(ctx context.Context, sessionID string) ([]contractx.ChatMessage, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}
