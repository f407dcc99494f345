// Package domain contains core concepts of the chat system.
// This file defines Message and its timeline ordering.
// Messages are immutable once created.
package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. Sender is a snapshot of the
// author taken at creation time.
type Message struct {
	ID       uuid.UUID `json:"id"`
	Room     RoomID    `json:"roomId"`
	SenderID string    `json:"senderId"`
	Sender   User      `json:"sender"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}

// Before reports whether m precedes other in the room timeline.
// The order is total: SentAt first, lexicographic ID on ties, so two
// messages sharing a timestamp always sort the same way.
func (m Message) Before(other Message) bool {
	if !m.SentAt.Equal(other.SentAt) {
		return m.SentAt.Before(other.SentAt)
	}
	return m.ID.String() < other.ID.String()
}

// SortMessages orders messages by (SentAt, ID), independent of the order
// they arrived from the network.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Before(messages[j])
	})
}
