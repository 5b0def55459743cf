package archive

import "time"

// ConversationRecord is the JSON document written to S3 before a
// conversation is deleted.
type ConversationRecord struct {
	Version         string    `json:"version"` // "1.0"
	ConversationID  string    `json:"conversation_id"`
	AgentID         string    `json:"agent_id,omitempty"`
	OwnerHash       string    `json:"owner_hash,omitempty"` // sha256 of owning user id
	BusinessName    string    `json:"business_name,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	ArchivedAt      time.Time `json:"archived_at"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	MessageCount    int       `json:"message_count"`
	Summary         string    `json:"summary,omitempty"`
	Sentiment       string    `json:"sentiment,omitempty"`
	Messages        []Message `json:"messages"`
}

// Message is a single conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	ConversationID string `json:"conversation_id"`
	S3Key          string `json:"s3_key"`
	Sentiment      string `json:"sentiment"`
	ArchivedAt     string `json:"archived_at"`
	MessageCount   int    `json:"message_count"`
}
