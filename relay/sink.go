package relay

import (
	"context"

	"chat-sync/domain/event"
)

// Sink buffers events for one websocket connection. The connection's write
// loop drains Events.
type Sink struct {
	Events chan event.RoomEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.RoomEvent, bufferSize)}
}

// Consume hands the event to the connection's write loop. A full buffer
// drops the event rather than stalling the publisher.
func (s *Sink) Consume(ctx context.Context, e event.RoomEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
