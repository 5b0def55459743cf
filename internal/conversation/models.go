package conversation

import (
	"time"
)

// Role identifies who spoke a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Conversation is one call and its lifecycle fields.
type Conversation struct {
	ID              string     `json:"id"`
	AgentID         *string    `json:"agent_id,omitempty"`
	UserID          *string    `json:"user_id,omitempty"`
	OwnerID         string     `json:"-"`
	AgentName       string     `json:"agent_name,omitempty"`
	BusinessName    string     `json:"business_name,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int       `json:"duration,omitempty"`
	Summary         *string    `json:"summary,omitempty"`
	Sentiment       *string    `json:"sentiment,omitempty"`
	MessageCount    int        `json:"message_count"`
}

// Message is one persisted turn. ID orders messages sharing a timestamp.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"timestamp"`
}

// Metadata keys carried with every conversation.
const (
	MetaStartTime         = "start_time"
	MetaSystemInstruction = "system_instruction"
	MetaAgentID           = "agent_id"
	MetaGreeting          = "greeting"
	MetaBusinessName      = "business_name"
)

// Metadata is the per-conversation key/value bag.
type Metadata map[string]string

// StartTime parses the recorded call start.
func (m Metadata) StartTime() (time.Time, bool) {
	raw, ok := m[MetaStartTime]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m Metadata) SystemInstruction() string {
	return m[MetaSystemInstruction]
}

// NewConversation describes a call to create.
type NewConversation struct {
	ID        string
	AgentID   *string
	UserID    *string
	StartedAt time.Time
	Metadata  Metadata
	Greeting  string
}

// Filter scopes a listing. An empty OwnerID with All unset matches nothing.
type Filter struct {
	OwnerID string
	AgentID string
	All     bool
	Limit   int
}

// Detail is a conversation plus its ordered messages.
type Detail struct {
	Conversation
	Messages []Message `json:"messages"`
}
