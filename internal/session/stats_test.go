package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ragchat/internal/domain"
	"ragchat/internal/events"
)

func TestStatsStartsStale(t *testing.T) {
	s := NewStats(events.NewBus())
	assert.True(t, s.Stale())
	assert.False(t, s.Loaded())
	assert.False(t, s.CanClear())
}

func TestStatsSetReplacesWholesale(t *testing.T) {
	s := NewStats(events.NewBus())
	s.Set(domain.CollectionStats{TotalDocuments: 7, CollectionName: "rag_collection"})

	assert.False(t, s.Stale())
	assert.True(t, s.Loaded())
	assert.Equal(t, 7, s.Current().TotalDocuments)
	assert.True(t, s.CanClear())

	s.Set(domain.CollectionStats{TotalDocuments: 0, CollectionName: "rag_collection"})
	assert.False(t, s.CanClear())
}

func TestStatsGoesStaleOnUploadCompleted(t *testing.T) {
	bus := events.NewBus()
	s := NewStats(bus)
	s.Set(domain.CollectionStats{TotalDocuments: 1, CollectionName: "rag_collection"})
	assert.False(t, s.Stale())

	bus.Publish(events.Event{Type: events.UploadCompleted})
	assert.True(t, s.Stale())

	// a confirmed re-fetch clears staleness again
	s.Set(domain.CollectionStats{TotalDocuments: 2, CollectionName: "rag_collection"})
	assert.False(t, s.Stale())
	assert.Equal(t, 2, s.Current().TotalDocuments)
}
