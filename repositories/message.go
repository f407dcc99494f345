// Package repositories persists chat state in BadgerDB.
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-sync/domain"
	"chat-sync/errors"
)

// MessageRepository stores messages under
// "msg:{room}:{timestamp_padded}:{uuid}" keys so that:
//  1. a prefix scan returns a room's messages in chronological order
//     (19-digit zero padding keeps the lexicographic order numeric);
//  2. the uuid suffix disambiguates two messages stored at the same
//     nanosecond.
//
// A secondary "msgidx:{uuid}" entry maps a message ID back to its primary
// key for deletion.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type storedMessage struct {
	ID       string      `json:"id"`
	Room     string      `json:"room"`
	SenderID string      `json:"sender_id"`
	Sender   domain.User `json:"sender"`
	Content  string      `json:"content"`
	SentAt   int64       `json:"sent_at"`
}

func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.Room, m.SentAt.UnixNano(), m.ID))
}

func messageIndexKey(id string) []byte {
	return []byte("msgidx:" + id)
}

func (r MessageRepository) Store(m domain.Message) error {
	value, err := json.Marshal(storedMessage{
		ID:       m.ID.String(),
		Room:     string(m.Room),
		SenderID: m.SenderID,
		Sender:   m.Sender,
		Content:  m.Content,
		SentAt:   m.SentAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	key := messageKey(m)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(m.ID.String()), key)
	})
}

// ListByRoom returns a room's messages via a chronological prefix scan.
func (r MessageRepository) ListByRoom(room domain.RoomID) ([]domain.Message, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(v []byte) error {
				raw = append(raw, append([]byte(nil), v...))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var s storedMessage
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, domain.Message{
			ID:       id,
			Room:     domain.RoomID(s.Room),
			SenderID: s.SenderID,
			Sender:   s.Sender,
			Content:  s.Content,
			SentAt:   time.Unix(0, s.SentAt).UTC(),
		})
	}
	return messages, nil
}

// Delete removes a message by ID, resolving its primary key via the index.
func (r MessageRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIndexKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		var key []byte
		if err := item.Value(func(v []byte) error {
			key = append([]byte(nil), v...)
			return nil
		}); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
}
