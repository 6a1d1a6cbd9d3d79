package trace

import (
	"context"
	"sync"
)

// Store persists and retrieves Records by task ID.
type Store interface {
	Get(taskID string) (*Record, bool)
	Put(record *Record)
}

// memStore is an in-process, thread-safe Store. It is registered as a
// Bus subscriber via NewStoreSubscriber and accumulates Records from the
// stream of published events.
type memStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemStore constructs an in-memory Store.
func NewMemStore() Store {
	return &memStore{records: make(map[string]*Record)}
}

func (s *memStore) Get(taskID string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[taskID]
	return r, ok
}

func (s *memStore) Put(record *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.TaskID] = record
}

// storeSubscriber folds trace events into per-task Records held in a Store.
// It is the in-process persistence subscriber spec §4.9 describes sitting
// alongside the optional Pulse republisher.
type storeSubscriber struct {
	mu      sync.Mutex
	store   Store
	pending map[string]*Record
}

// NewStoreSubscriber constructs a Subscriber that accumulates published
// events into Records and writes them through to store on every event
// (so Store.Get always reflects the latest state, including mid-run).
func NewStoreSubscriber(store Store) Subscriber {
	return &storeSubscriber{store: store, pending: make(map[string]*Record)}
}

func (s *storeSubscriber) HandleEvent(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[event.TaskID]
	if !ok {
		if existing, ok := s.store.Get(event.TaskID); ok {
			rec = existing
		} else {
			rec = &Record{TaskID: event.TaskID}
		}
		s.pending[event.TaskID] = rec
	}

	switch event.Type {
	case EventModelEscalated:
		rec.RecordEscalation(event.ToModel)
	case EventToolDispatched:
		rec.RecordToolCall(event.ToolName)
	case EventRunTerminal:
		rec.AddUsage(event.PromptTokens, event.CompletionTokens)
	}

	s.store.Put(rec)
	return nil
}
