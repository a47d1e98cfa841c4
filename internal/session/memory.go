package session

import (
	"context"
	"sync"
	"time"

	"regenx/internal/models"
)

type memoryEntry struct {
	identity  models.Identity
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory (single-instance only).
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Set(_ context.Context, sid string, id models.Identity) error {
	s.mu.Lock()
	s.entries[sid] = memoryEntry{identity: id, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sid]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, sid)
		return nil, nil
	}
	id := entry.identity
	return &id, nil
}

func (s *MemoryStore) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.entries, sid)
	s.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for sid, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, sid)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is canceled.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
