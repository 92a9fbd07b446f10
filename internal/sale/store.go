package sale

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Store persists sale workflows between requests.
type Store interface {
	Create(ctx context.Context, w *Workflow) error
	Load(ctx context.Context, id string) (*Workflow, error)
	// Update applies fn under the workflow lock and saves the result.
	// Nothing is saved when fn returns an error.
	Update(ctx context.Context, id string, fn func(*Workflow) error) (*Workflow, error)
	// Expire shortens the lifetime of a workflow.
	Expire(ctx context.Context, id string, after time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps workflows in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore constructs a store whose entries expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Create(ctx context.Context, w *Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("sale: encode workflow: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[w.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Workflow) error) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	w.UpdatedAt = s.now()
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("sale: encode workflow: %w", err)
	}
	entry := s.entries[id]
	entry.data = data
	if w.Stage != StageCommitted {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[id] = entry
	return w, nil
}

func (s *MemoryStore) Expire(ctx context.Context, id string, after time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	entry.expiresAt = s.now().Add(after)
	s.entries[id] = entry
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) load(id string) (*Workflow, error) {
	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	var w Workflow
	if err := json.Unmarshal(entry.data, &w); err != nil {
		return nil, fmt.Errorf("sale: decode workflow: %w", err)
	}
	return &w, nil
}
