package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	contractx "github.com/wearly/concierge/agent/contract"
)

const (
	defaultKeyPrefix = "concierge:session:"
	defaultTTL       = 24 * time.Hour
)

// Store persists conversation state. Get returns contract.ErrNotFound for
// unknown sessions; transport failures wrap contract.ErrUnavailable.
// Save is an upsert and refreshes the sliding TTL.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	AppendMessage(ctx context.Context, sessionID string, role contractx.Role, content string) error
	GetMessages(ctx context.Context, sessionID string) ([]contractx.ChatMessage, error)
}

type StoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

type RedisConfig struct {
	Addr     string        `envconfig:"ADDR" split_words:"true" default:"localhost:6379"`
	Password string        `envconfig:"PASSWORD" split_words:"true"`
	DB       int           `envconfig:"DB" split_words:"true" default:"0"`
	TTL      time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

// RedisStore keeps each session as one JSON value with a sliding TTL.
// Concurrent turns for the same session are last-write-wins.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) *RedisStore {
	store := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	key, err := s.key(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: session %s", contractx.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", contractx.ErrUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	sess.Migrate()
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if sess.SchemaVersion <= 0 {
		sess.SchemaVersion = CurrentSchemaVersion
	}
	sess.Touch(s.now())

	key, err := s.key(sess.SessionID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", contractx.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, sessionID string, role contractx.Role, content string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.AppendMessage(role, content)
	return s.Save(ctx, sess)
}

func (s *RedisStore) GetMessages(ctx context.Context, sessionID string) ([]contractx.ChatMessage, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

func (s *RedisStore) key(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.keyPrefix + sessionID, nil
}
