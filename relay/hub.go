package relay

import (
	"context"
	"log/slog"
	"time"

	"chat-sync/domain"
	"chat-sync/domain/event"
)

// Hub delivers events to every sink joined to a room.
//
// Delivery is best-effort: no retries, no queuing, no ordering guarantee
// across rooms. An event lost to a disconnected or slow client is recovered
// by the next pull that client performs.
type Hub struct {
	log         *slog.Logger
	registry    *Registry
	sinkTimeout time.Duration
}

func NewHub(log *slog.Logger, registry *Registry, sinkTimeout time.Duration) *Hub {
	return &Hub{log: log, registry: registry, sinkTimeout: sinkTimeout}
}

// Publish fans out e to every member of the room except the excluded
// client handle. A sink that cannot accept within the timeout loses the
// event.
func (h *Hub) Publish(ctx context.Context, room domain.RoomID, e event.RoomEvent, excluding string) {
	for _, sink := range h.registry.SinksForRoom(room, excluding) {
		sinkCtx, cancel := context.WithTimeout(ctx, h.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			h.log.Debug("event dropped for slow sink", "room", room, "error", err)
		}
		cancel()
	}
}
