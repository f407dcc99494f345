// Package services implements the query/command surface of the chat system.
// The relay is notified by callers after a command returns: persistence
// never depends on relay connectivity.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/moderation"
	"chat-sync/repositories"
)

type ChatService struct {
	messages         repositories.MessageRepository
	rooms            repositories.RoomRepository
	moderator        *moderation.Moderator
	log              *slog.Logger
	maxContentLength int
}

func NewChatService(log *slog.Logger, messages repositories.MessageRepository,
	rooms repositories.RoomRepository, moderator *moderation.Moderator,
	maxContentLength int) *ChatService {
	return &ChatService{
		messages:         messages,
		rooms:            rooms,
		moderator:        moderator,
		log:              log,
		maxContentLength: maxContentLength,
	}
}

// CreateMessage validates and censors the content, snapshots the sender and
// persists the message. The returned message is advisory: viewers converge
// on it through their next pull, not through this return value.
func (s *ChatService) CreateMessage(ctx context.Context, sender domain.User,
	room domain.RoomID, content string) (domain.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if len([]rune(trimmed)) > s.maxContentLength {
		return domain.Message{}, errors.ErrContentTooLong
	}
	if _, err := s.rooms.Get(room); err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		ID:       uuid.New(),
		Room:     room,
		SenderID: sender.ID,
		Sender:   sender,
		Content:  s.moderator.Censor(trimmed),
		SentAt:   time.Now().UTC(),
	}
	if err := s.messages.Store(message); err != nil {
		s.log.Error("message persistence failed", "room", room, "error", err)
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrCommandFailed, err)
	}
	return message, nil
}

// GetMessages returns the room's messages in total (SentAt, ID) order.
func (s *ChatService) GetMessages(ctx context.Context, room domain.RoomID) ([]domain.Message, error) {
	messages, err := s.messages.ListByRoom(room)
	if err != nil {
		return nil, err
	}
	domain.SortMessages(messages)
	return messages, nil
}

func (s *ChatService) GetRoom(ctx context.Context, room domain.RoomID) (domain.Room, error) {
	return s.rooms.Get(room)
}

func (s *ChatService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.List()
}

func (s *ChatService) CreateRoom(ctx context.Context, creator domain.User,
	name, description string) (domain.Room, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Room{}, fmt.Errorf("%w: room name required", errors.ErrCommandFailed)
	}
	room := domain.Room{
		ID:          domain.RoomID(uuid.NewString()),
		Name:        name,
		Description: description,
		CreatorID:   creator.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.rooms.Save(room); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrCommandFailed, err)
	}
	return room, nil
}

func (s *ChatService) DeleteRoom(ctx context.Context, room domain.RoomID) error {
	return s.rooms.Delete(room)
}

// DeleteMessage is a pass-through to the repository; no relay notification
// is implied here, the caller publishes if it wants viewers to re-pull.
func (s *ChatService) DeleteMessage(ctx context.Context, id string) error {
	return s.messages.Delete(id)
}
