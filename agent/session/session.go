package session

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/wearly/concierge/agent/contract"
)

// CurrentSchemaVersion is bumped whenever the stored shape changes.
// Loaded records are migrated forward before use.
const CurrentSchemaVersion = 1

var (
	ErrNilSession     = errors.New("session is nil")
	ErrInvalidSession = errors.New("session id is empty")
)

// Session is the persisted multi-turn conversation state for one
// session id. Messages are append-only; the orchestrator mutates the
// record once per turn.
type Session struct {
	SchemaVersion int    `json:"schema_version"`
	SessionID     string `json:"session_id"`
	CustomerID    string `json:"customer_id"`
	Channel       string `json:"channel"`

	Messages    []contractx.ChatMessage `json:"message_history,omitempty"`
	LastIntent  string                  `json:"last_intent,omitempty"`
	LastResults contractx.TaskResults   `json:"last_results,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Pre-versioning payload fields, consumed by Migrate.
	LegacyIntent      string         `json:"intent,omitempty"`
	LegacyFilters     map[string]any `json:"filters,omitempty"`
	LegacyLastMessage string         `json:"last_message,omitempty"`
}

func New(sessionID, customerID, channel string, now time.Time) *Session {
	return &Session{
		SchemaVersion: CurrentSchemaVersion,
		SessionID:     sessionID,
		CustomerID:    customerID,
		Channel:       channel,
		UpdatedAt:     now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendMessage adds one message to the history. History never shrinks.
func (s *Session) AppendMessage(role contractx.Role, content string) {
	s.Messages = append(s.Messages, contractx.ChatMessage{Role: role, Content: content})
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	return nil
}

// Migrate upgrades a loaded record to CurrentSchemaVersion. Version-0
// payloads carried a flat intent/filters/last_message shape; filters are
// folded into LastResults and the last message seeds the history.
func (s *Session) Migrate() {
	if s == nil || s.SchemaVersion >= CurrentSchemaVersion {
		return
	}

	if s.LastIntent == "" {
		s.LastIntent = s.LegacyIntent
	}
	if len(s.LegacyFilters) > 0 {
		if s.LastResults == nil {
			s.LastResults = contractx.TaskResults{}
		}
		if _, ok := s.LastResults["filters"]; !ok {
			s.LastResults["filters"] = s.LegacyFilters
		}
	}
	if len(s.Messages) == 0 && strings.TrimSpace(s.LegacyLastMessage) != "" {
		s.AppendMessage(contractx.RoleUser, s.LegacyLastMessage)
	}

	s.LegacyIntent = ""
	s.LegacyFilters = nil
	s.LegacyLastMessage = ""
	s.SchemaVersion = CurrentSchemaVersion
}
