package events

import "time"

// UploadCompleted fires after a document upload has succeeded and the upload
// session's local state has settled. Payload: "filename" (string), "chunks"
// (int).
const UploadCompleted = "UPLOAD_COMPLETED"

// Event is a point-in-time occurrence published on the Bus.
type Event struct {
	Type       string
	Payload    map[string]any
	OccurredAt time.Time
}

// Handler receives events of the type it subscribed to.
type Handler func(Event)

// Bus is a synchronous in-process publish/subscribe dispatcher. The whole
// application runs on one logical thread, so handlers run inline during
// Publish and no locking is involved.
type Bus struct {
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(eventType string, h Handler) {
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *Bus) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	for _, h := range b.handlers[ev.Type] {
		h(ev)
	}
}
