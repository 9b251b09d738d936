package model

import (
	"time"
)

// MaxHistory bounds the per-session message history kept in memory and
// sent to the generation backend.
const MaxHistory = 30

// ChatMessage represents one message within a chat session.
type ChatMessage struct {
	Role    string // "user" | "assistant"
	Content string
}

// ChatSession is the aggregate root for one running conversation between a
// user and the assistant persona. At most one session per user is active.
type ChatSession struct {
	ID            string
	UserID        int64
	History       []ChatMessage
	MessagesCount int
	Active        bool
	CreatedAt     time.Time
}

func NewChatSession(id string, userID int64) *ChatSession {
	return &ChatSession{
		ID:        id,
		UserID:    userID,
		History:   make([]ChatMessage, 0, 8),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

// Append adds a message and truncates the history to the most recent
// MaxHistory entries.
func (s *ChatSession) Append(role, content string) {
	s.History = append(s.History, ChatMessage{Role: role, Content: content})
	if len(s.History) > MaxHistory {
		s.History = s.History[len(s.History)-MaxHistory:]
	}
}

func (s *ChatSession) Finish() { s.Active = false }
