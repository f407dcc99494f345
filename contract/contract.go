//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"context"
)

// QueryService reads authoritative chat state. The relay carries no message
// content, so viewers reconcile through these reads after every change
// notification.
type QueryService interface {
	GetMessages(ctx context.Context, room domain.RoomID) ([]domain.Message, error)
	GetRoom(ctx context.Context, room domain.RoomID) (domain.Room, error)
}

// CommandService mutates authoritative chat state. Submission goes through
// here regardless of relay connectivity: the relay is a notification
// side-channel, not the data path.
type CommandService interface {
	CreateMessage(ctx context.Context, room domain.RoomID, content string) (domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// EventSink receives relayed events for one connected client.
type EventSink interface {
	Consume(ctx context.Context, e event.RoomEvent) error
}

// Publisher pushes an event into a room, optionally excluding one client
// handle (a sender's own typing keystroke need not echo back to itself).
type Publisher interface {
	Publish(ctx context.Context, room domain.RoomID, e event.RoomEvent, excluding string)
}

// AuthStatus is the identity provider's view of the current session.
type AuthStatus int

const (
	StatusLoading AuthStatus = iota
	StatusUnauthenticated
	StatusAuthenticated
)

// Identity supplies the current user. The sync layer only activates
// (connects, queries) once the status is StatusAuthenticated.
type Identity interface {
	CurrentUser() (domain.User, AuthStatus)
}
