package relay

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
)

// Client-to-relay frame types.
const (
	FrameJoin    = "join"
	FrameLeave   = "leave"
	FramePublish = "publish"
)

// Event kinds carried in publish and event frames.
const (
	KindRoomChanged = "room-changed"
	KindUserTyping  = "user-typing"
)

// ClientFrame is what a client sends to the relay.
type ClientFrame struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Kind string `json:"kind,omitempty"`
	// ExcludeSelf keeps the publisher's own connection out of the fanout.
	// Typing events set it; room-changed does not, so the sender's own
	// pull-refresh is driven by the same notification as everyone else's.
	ExcludeSelf bool `json:"excludeSelf,omitempty"`
}

// ServerFrame is what the relay pushes to clients.
type ServerFrame struct {
	Kind string       `json:"kind"`
	Room string       `json:"room"`
	User *domain.User `json:"user,omitempty"`
}

// ToFrame converts a relayed event to its wire form.
func ToFrame(e event.RoomEvent) ServerFrame {
	switch evt := e.(type) {
	case event.UserTyping:
		user := evt.User
		return ServerFrame{Kind: KindUserTyping, Room: string(evt.Room), User: &user}
	case event.RoomChanged:
		return ServerFrame{Kind: KindRoomChanged, Room: string(evt.Room)}
	default:
		return ServerFrame{Room: string(e.RoomID())}
	}
}
