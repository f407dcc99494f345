// Package relay fans out room events to connected clients.
//
// The relay holds no message content and no durable state: a restart
// empties membership and reconnecting clients simply re-join.
package relay

import (
	"sync"

	"chat-sync/contract"
	"chat-sync/domain"
)

// Registry tracks which client handles are joined to which room.
// Per-room membership mutation is atomic with respect to concurrent
// joins, leaves and publishes; a single RWMutex is the serialization point.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]map[string]contract.EventSink)}
}

// Join registers a client's sink in a room, initializing the room on the
// fly. Joining twice overwrites the previous sink for that handle.
func (r *Registry) Join(room domain.RoomID, clientID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]contract.EventSink)
		r.rooms[room] = members
	}
	members[clientID] = sink
}

// Leave removes the client from the room. Empty rooms are dropped so the
// map does not leak entries over time.
func (r *Registry) Leave(room domain.RoomID, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, clientID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// SinksForRoom returns the sinks currently joined to the room, skipping the
// optional excluded client handle.
func (r *Registry) SinksForRoom(room domain.RoomID, excluding string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for clientID, sink := range members {
		if excluding != "" && clientID == excluding {
			continue
		}
		sinks = append(sinks, sink)
	}
	return sinks
}
