package verification

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	code    string
	misses  int64
	expires time.Time
}

// MemoryStore keeps codes in process memory. Used when no Redis address is
// configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, purpose Purpose, subject, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.entries[key(purpose, subject)] = entry{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, purpose Purpose, subject string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key(purpose, subject)]
	if !ok {
		return "", ErrNoCode
	}
	if !s.now().Before(e.expires) {
		return "", ErrExpired
	}
	return e.code, nil
}

func (s *MemoryStore) Miss(ctx context.Context, purpose Purpose, subject string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(purpose, subject)
	e, ok := s.entries[k]
	if !ok || !s.now().Before(e.expires) {
		return 0, ErrNoCode
	}
	e.misses++
	s.entries[k] = e
	return e.misses, nil
}

func (s *MemoryStore) Delete(ctx context.Context, purpose Purpose, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(purpose, subject))
	return nil
}

// sweep drops expired entries. Callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
}
