package conversation

import (
	"context"
	"time"
)

// Store persists conversations, their ordered message log and metadata.
// Implementations must serialize AppendTurn per conversation so the pair of
// messages lands in order with nothing interleaved.
type Store interface {
	// Create writes the conversation, its metadata and the greeting as a unit.
	Create(ctx context.Context, nc NewConversation) (*Conversation, error)
	Get(ctx context.Context, id string) (*Conversation, error)
	Metadata(ctx context.Context, id string) (Metadata, error)
	// RecentMessages returns up to limit newest messages in ascending order.
	RecentMessages(ctx context.Context, id string, limit int) ([]Message, error)
	Messages(ctx context.Context, id string) ([]Message, error)
	// AppendTurn records a user message and its reply atomically.
	AppendTurn(ctx context.Context, id, userText, agentText string) ([]Message, error)
	// Finish records the end of a call once. Later calls return the stored
	// duration.
	Finish(ctx context.Context, id string, endedAt time.Time, durationSeconds int) (int, error)
	SaveSummary(ctx context.Context, id, summary, sentiment string) error
	List(ctx context.Context, filter Filter) ([]Conversation, error)
	Delete(ctx context.Context, id string) error
}
