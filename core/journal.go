package core

import "time"

// Journal is an append-only, stream-partitioned record store. Actors use it
// for activity and violation histories that are read back for reports.
type Journal interface {
	Append(stream string, entry Entry) (Entry, error)
	Recent(stream string, n int) []Entry
	Search(stream, query string, limit int) []Entry
	Len(stream string) int
	Streams() []string
}

// Entry is a single journal record. Sequence numbers are assigned by the
// journal and are strictly increasing per stream.
type Entry struct {
	Seq       int            `json:"seq"`
	Kind      string         `json:"kind"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
