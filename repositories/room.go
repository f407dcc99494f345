package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-sync/domain"
	"chat-sync/errors"
)

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) RoomRepository {
	return RoomRepository{db: db}
}

type storedRoom struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatorID   string `json:"creator_id"`
	CreatedAt   int64  `json:"created_at"`
}

func roomKey(id domain.RoomID) []byte {
	return []byte("room:" + string(id))
}

func (r RoomRepository) Save(room domain.Room) error {
	value, err := json.Marshal(storedRoom{
		ID:          string(room.ID),
		Name:        room.Name,
		Description: room.Description,
		CreatorID:   room.CreatorID,
		CreatedAt:   room.CreatedAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(room.ID), value)
	})
}

func (r RoomRepository) Get(id domain.RoomID) (domain.Room, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			raw = append([]byte(nil), v...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	return decodeRoom(raw)
}

func (r RoomRepository) List() ([]domain.Room, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("room:")
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

	rooms := make([]domain.Room, 0, len(raw))
	for _, b := range raw {
		room, err := decodeRoom(b)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (r RoomRepository) Delete(id domain.RoomID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(roomKey(id))
	})
}

func decodeRoom(raw []byte) (domain.Room, error) {
	var s storedRoom
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:          domain.RoomID(s.ID),
		Name:        s.Name,
		Description: s.Description,
		CreatorID:   s.CreatorID,
		CreatedAt:   time.Unix(0, s.CreatedAt).UTC(),
	}, nil
}
