package booking

import (
	"context"
	"sync"
	"time"

	"voicetask/models"
)

// ConversationStore holds at most one conversation per key. Get must treat an entry whose
// expiry has passed as absent even if Sweep has not removed it yet.
type ConversationStore interface {
	Get(ctx context.Context, key string, now time.Time) (*models.Conversation, error)
	Put(ctx context.Context, conv models.Conversation) error
	Delete(ctx context.Context, key string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	convs map[string]models.Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]models.Conversation)}
}

func (s *MemoryStore) Get(_ context.Context, key string, now time.Time) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[key]
	if !ok {
		return nil, nil
	}
	if conv.Expired(now) {
		delete(s.convs, key)
		return nil, nil
	}
	return cloneConversation(conv), nil
}

func (s *MemoryStore) Put(_ context.Context, conv models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.Key] = *cloneConversation(conv)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, key)
	return nil
}

// Sweep evicts every expired conversation and reports how many were removed.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, conv := range s.convs {
		if conv.Expired(now) {
			delete(s.convs, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored conversations, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

// cloneConversation copies the variant structs so callers cannot mutate stored state in place.
// Provider and slot slices are replaced, never edited, and are shared.
func cloneConversation(conv models.Conversation) *models.Conversation {
	out := conv
	if conv.Booking != nil {
		b := *conv.Booking
		out.Booking = &b
	}
	if conv.Pending != nil {
		p := *conv.Pending
		out.Pending = &p
	}
	return &out
}
