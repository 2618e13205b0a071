package app

import (
	"sync"
	"time"

	"propnet/go-core/pkg/models"
)

// NotificationHub fans change events out to subscribers and keeps a bounded
// replayable backlog addressed by sequence number, so a lazy consumer can
// restart from wherever it left off.
type NotificationHub struct {
	mu      sync.Mutex
	nextSeq int64
	limit   int
	history []models.ChangeEvent
	subs    map[int]chan models.ChangeEvent
	nextSub int
}

func NewNotificationHub(limit int) *NotificationHub {
	if limit < 1 {
		limit = 1
	}
	return &NotificationHub{
		limit: limit,
		subs:  make(map[int]chan models.ChangeEvent),
	}
}

// Publish stamps the event with the next sequence number and timestamp and
// delivers it. A subscriber that cannot keep up is dropped rather than
// allowed to stall the publisher.
func (h *NotificationHub) Publish(event models.ChangeEvent) models.ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	event.Seq = h.nextSeq
	event.Timestamp = time.Now().UTC()

	h.history = append(h.history, event)
	if len(h.history) > h.limit {
		h.history = append([]models.ChangeEvent(nil), h.history[len(h.history)-h.limit:]...)
	}

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			close(ch)
			delete(h.subs, id)
		}
	}
	return event
}

// Since returns up to max backlog events with Seq > fromSeq, oldest first.
// max <= 0 means no cap.
func (h *NotificationHub) Since(fromSeq int64, max int) []models.ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.ChangeEvent, 0)
	for _, event := range h.history {
		if event.Seq <= fromSeq {
			continue
		}
		out = append(out, event)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// Subscribe replays the backlog from fromSeq and then streams new events.
// The cancel func releases the subscription.
func (h *NotificationHub) Subscribe(fromSeq int64) ([]models.ChangeEvent, <-chan models.ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	replay := make([]models.ChangeEvent, 0)
	for _, event := range h.history {
		if event.Seq > fromSeq {
			replay = append(replay, event)
		}
	}

	id := h.nextSub
	h.nextSub++
	ch := make(chan models.ChangeEvent, 128)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			close(sub)
			delete(h.subs, id)
		}
	}
	return replay, ch, cancel
}

// BacklogSize reports how many events are currently replayable.
func (h *NotificationHub) BacklogSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.history)
}

// LastSeq reports the sequence number of the newest published event.
func (h *NotificationHub) LastSeq() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextSeq
}
