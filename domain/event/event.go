// Package event defines the transient notifications relayed between room
// viewers. Events are never stored, only fanned out.
package event

import "chat-sync/domain"

// RoomEvent is the tagged union a relay fans out within a room.
type RoomEvent interface {
	RoomID() domain.RoomID
}

// RoomChanged means the authoritative message state of the room changed;
// viewers must re-pull.
type RoomChanged struct {
	Room domain.RoomID
}

func (e RoomChanged) RoomID() domain.RoomID { return e.Room }

// UserTyping means the user is actively composing in the room.
type UserTyping struct {
	Room domain.RoomID
	User domain.User
}

func (e UserTyping) RoomID() domain.RoomID { return e.Room }
