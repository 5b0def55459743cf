package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRecord struct {
	conv     Conversation
	meta     Metadata
	messages []Message
}

// MemoryStore keeps conversations in process memory. It serves local
// development and tests; every operation holds one store-wide lock.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	nextID  int64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*memoryRecord), now: time.Now}
}

func (s *MemoryStore) Create(ctx context.Context, nc NewConversation) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := nc.ID
	if id == "" {
		id = uuid.New().String()
	}
	started := nc.StartedAt
	if started.IsZero() {
		started = s.now().UTC()
	}
	conv := Conversation{
		ID:        id,
		AgentID:   copyString(nc.AgentID),
		UserID:    copyString(nc.UserID),
		StartedAt: started,
	}
	if nc.UserID != nil {
		conv.OwnerID = *nc.UserID
	}
	meta := Metadata{}
	for k, v := range nc.Metadata {
		meta[k] = v
	}
	conv.BusinessName = meta[MetaBusinessName]

	rec := &memoryRecord{conv: conv, meta: meta}
	if nc.Greeting != "" {
		rec.messages = append(rec.messages, s.newMessage(id, RoleAgent, nc.Greeting, started))
		rec.conv.MessageCount = 1
	}
	s.records[id] = rec

	out := rec.conv
	return &out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	out := rec.conv
	return &out, nil
}

func (s *MemoryStore) Metadata(ctx context.Context, id string) (Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	out := make(Metadata, len(rec.meta))
	for k, v := range rec.meta {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) RecentMessages(ctx context.Context, id string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	msgs := rec.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]Message(nil), msgs...), nil
}

func (s *MemoryStore) Messages(ctx context.Context, id string) ([]Message, error) {
	return s.RecentMessages(ctx, id, 0)
}

func (s *MemoryStore) AppendTurn(ctx context.Context, id, userText, agentText string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	now := s.now().UTC()
	pair := []Message{
		s.newMessage(id, RoleUser, userText, now),
		s.newMessage(id, RoleAgent, agentText, now),
	}
	rec.messages = append(rec.messages, pair...)
	rec.conv.MessageCount += len(pair)
	return pair, nil
}

func (s *MemoryStore) Finish(ctx context.Context, id string, endedAt time.Time, durationSeconds int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return 0, ErrConversationNotFound
	}
	if rec.conv.EndedAt != nil && rec.conv.DurationSeconds != nil {
		return *rec.conv.DurationSeconds, nil
	}
	ended := endedAt.UTC()
	d := durationSeconds
	rec.conv.EndedAt = &ended
	rec.conv.DurationSeconds = &d
	return d, nil
}

func (s *MemoryStore) SaveSummary(ctx context.Context, id, summary, sentiment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrConversationNotFound
	}
	rec.conv.Summary = &summary
	rec.conv.Sentiment = &sentiment
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Conversation
	for _, rec := range s.records {
		if !filter.All && (filter.OwnerID == "" || rec.conv.OwnerID != filter.OwnerID) {
			continue
		}
		if filter.AgentID != "" && (rec.conv.AgentID == nil || *rec.conv.AgentID != filter.AgentID) {
			continue
		}
		out = append(out, rec.conv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.records, id)
	return nil
}

// DetachAgent clears the agent reference on conversations of a deleted agent.
func (s *MemoryStore) DetachAgent(ctx context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.conv.AgentID != nil && *rec.conv.AgentID == agentID {
			rec.conv.AgentID = nil
		}
	}
	return nil
}

// Snapshot returns every conversation; reporting aggregates over it.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]Conversation, error) {
	return s.List(ctx, Filter{All: true})
}

func (s *MemoryStore) newMessage(convID string, role Role, content string, at time.Time) Message {
	s.nextID++
	return Message{ID: s.nextID, ConversationID: convID, Role: role, Content: content, CreatedAt: at}
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
