package journal

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/agentmarket/core"
)

// InMemoryStore is a process-local Journal. Each stream is an append-only
// slice; readers receive copies so stored entries cannot be mutated.
//
// Concurrency: protected by RWMutex.
// Search: linear scan with case-insensitive substring matching over Kind and
// Content, newest first.
type InMemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]core.Entry
	limit   int
}

// NewInMemoryStore creates an empty journal. A positive limit caps every
// stream; the oldest entries are discarded first.
func NewInMemoryStore(limit int) *InMemoryStore {
	return &InMemoryStore{
		streams: make(map[string][]core.Entry),
		limit:   limit,
	}
}

var _ core.Journal = (*InMemoryStore)(nil)

// Append stores a copy of entry at the end of stream and returns it with its
// assigned sequence number.
func (s *InMemoryStore) Append(stream string, entry core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.streams[stream]

	entry.Seq = 1
	if n := len(entries); n > 0 {
		entry.Seq = entries[n-1].Seq + 1
	}

	entry.Metadata = maps.Clone(entry.Metadata)
	entries = append(entries, entry)

	if s.limit > 0 && len(entries) > s.limit {
		entries = slices.Delete(entries, 0, len(entries)-s.limit)
	}

	s.streams[stream] = entries

	return copyEntry(entry), nil
}

// Recent returns up to n of the latest entries, oldest first.
func (s *InMemoryStore) Recent(stream string, n int) []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.streams[stream]
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}

	out := make([]core.Entry, 0, n)
	for _, e := range entries[len(entries)-n:] {
		out = append(out, copyEntry(e))
	}

	return out
}

// Search returns up to limit entries whose Kind or Content contains query,
// newest first. An empty query matches everything.
func (s *InMemoryStore) Search(stream, query string, limit int) []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	entries := s.streams[stream]
	out := []core.Entry{}

	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}

		e := entries[i]
		if q == "" || strings.Contains(strings.ToLower(e.Content), q) || strings.Contains(strings.ToLower(e.Kind), q) {
			out = append(out, copyEntry(e))
		}
	}

	return out
}

// Len returns the number of retained entries in stream.
func (s *InMemoryStore) Len(stream string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.streams[stream])
}

// Streams returns the known stream names in sorted order.
func (s *InMemoryStore) Streams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.streams))
}

func copyEntry(e core.Entry) core.Entry {
	e.Metadata = maps.Clone(e.Metadata)
	return e
}
