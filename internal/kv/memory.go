package kv

import (
	"context"
	"strings"
	"sync"
	"time"
)

const schemaKey = "schema:version"

type memEntry struct {
	value   string
	written time.Time
}

// MemoryStore is the offline/mirror backend: a mutex-guarded map with
// store-wide TTL, a total-size budget checked before writes, per-key change
// notification, and a one-shot schema migration hook.
type MemoryStore struct {
	mu       sync.RWMutex
	items    map[string]memEntry
	ttl      time.Duration // 0 = no expiry
	maxBytes int           // 0 = unbounded
	size     int
	watchers map[string][]chan string
	migrated bool
}

// NewMemoryStore creates a store with the given TTL and size budget.
func NewMemoryStore(ttl time.Duration, maxBytes int) *MemoryStore {
	return &MemoryStore{
		items:    make(map[string]memEntry),
		ttl:      ttl,
		maxBytes: maxBytes,
		watchers: make(map[string][]chan string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if s.ttl > 0 && time.Since(entry.written) > s.ttl {
		// stale
		s.mu.Lock()
		s.evict(key)
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (s *MemoryStore) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	old, exists := s.items[key]
	next := s.size + len(value)
	if exists {
		next -= len(old.value)
	}
	if s.maxBytes > 0 && next > s.maxBytes {
		s.mu.Unlock()
		return ErrStoreFull
	}
	s.items[key] = memEntry{value: value, written: time.Now()}
	s.size = next
	s.mu.Unlock()

	s.notify(key)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.evict(key)
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// evict must be called with mu held.
func (s *MemoryStore) evict(key string) {
	if entry, ok := s.items[key]; ok {
		s.size -= len(entry.value)
		delete(s.items, key)
	}
}

// Watch implements Watcher. The channel is buffered; a slow consumer drops
// notifications rather than blocking writers.
func (s *MemoryStore) Watch(ctx context.Context, key string) <-chan string {
	ch := make(chan string, 8)
	s.mu.Lock()
	s.watchers[key] = append(s.watchers[key], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		chans := s.watchers[key]
		for i, c := range chans {
			if c == ch {
				s.watchers[key] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()
	return ch
}

func (s *MemoryStore) notify(key string) {
	s.mu.RLock()
	chans := append([]chan string(nil), s.watchers[key]...)
	s.mu.RUnlock()
	for _, ch := range chans {
		select {
		case ch <- key:
		default:
		}
	}
}

// Keys implements Lister for "prefix*" patterns, which is all the
// repositories ask for.
func (s *MemoryStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Cleanup removes expired entries. The mirror runs this on a schedule.
func (s *MemoryStore) Cleanup() {
	if s.ttl == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, e := range s.items {
		if now.Sub(e.written) > s.ttl {
			s.size -= len(e.value)
			delete(s.items, k)
		}
	}
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Migrate runs fn once per process when the stored schema version differs
// from version, then records version. A version mismatch is an upgrade
// signal, not an error.
func (s *MemoryStore) Migrate(ctx context.Context, version string, fn func(ctx context.Context, from string) error) error {
	s.mu.Lock()
	if s.migrated {
		s.mu.Unlock()
		return nil
	}
	s.migrated = true
	stored := s.items[schemaKey].value
	s.mu.Unlock()

	if stored == version {
		return nil
	}
	if fn != nil {
		if err := fn(ctx, stored); err != nil {
			return err
		}
	}
	return s.Put(ctx, schemaKey, version)
}
