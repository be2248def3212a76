package session

import (
	"ragchat/internal/domain"
	"ragchat/internal/events"
)

// Stats is a read-through cache of backend collection metrics. The numbers
// are never adjusted locally; Set replaces them wholesale after a confirmed
// fetch. The cache starts stale and goes stale again whenever an upload
// completes, which the owner observes to trigger a re-fetch.
type Stats struct {
	current domain.CollectionStats
	loaded  bool
	stale   bool
}

func NewStats(bus *events.Bus) *Stats {
	s := &Stats{stale: true}
	if bus != nil {
		bus.Subscribe(events.UploadCompleted, func(events.Event) { s.stale = true })
	}
	return s
}

// Set replaces the cached metrics with a freshly fetched projection.
func (s *Stats) Set(cs domain.CollectionStats) {
	s.current = cs
	s.loaded = true
	s.stale = false
}

// Invalidate marks the cache stale, forcing the next observation to re-fetch.
func (s *Stats) Invalidate() { s.stale = true }

func (s *Stats) Stale() bool  { return s.stale }
func (s *Stats) Loaded() bool { return s.loaded }

func (s *Stats) Current() domain.CollectionStats { return s.current }

// CanClear reports whether the destructive clear action is permitted: only
// once metrics are loaded and the collection is non-empty.
func (s *Stats) CanClear() bool {
	return s.loaded && s.current.TotalDocuments > 0
}
