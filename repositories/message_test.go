package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-sync/domain"
	"chat-sync/errors"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testMessage(room domain.RoomID, at time.Time) domain.Message {
	return domain.Message{
		ID:       uuid.New(),
		Room:     room,
		SenderID: "u1",
		Sender:   domain.User{ID: "u1", DisplayName: "alice"},
		Content:  "hello",
		SentAt:   at,
	}
}

func TestMessageRepository(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	room := domain.RoomID("general")

	t.Run("store then list round-trips", func(t *testing.T) {
		repo := NewMessageRepository(newTestDB(t), log)
		message := testMessage(room, base)

		require.NoError(t, repo.Store(message))

		messages, err := repo.ListByRoom(room)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		require.Equal(t, message, messages[0])
	})

	t.Run("list returns chronological order via key layout", func(t *testing.T) {
		repo := NewMessageRepository(newTestDB(t), log)
		// Stored newest first, read back oldest first.
		for i := 2; i >= 0; i-- {
			require.NoError(t, repo.Store(testMessage(room, base.Add(time.Duration(i)*time.Second))))
		}

		messages, err := repo.ListByRoom(room)
		require.NoError(t, err)
		require.Len(t, messages, 3)
		require.True(t, messages[0].SentAt.Before(messages[1].SentAt))
		require.True(t, messages[1].SentAt.Before(messages[2].SentAt))
	})

	t.Run("list is scoped to one room", func(t *testing.T) {
		repo := NewMessageRepository(newTestDB(t), log)
		require.NoError(t, repo.Store(testMessage(room, base)))
		require.NoError(t, repo.Store(testMessage("other", base)))

		messages, err := repo.ListByRoom(room)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		require.Equal(t, room, messages[0].Room)
	})

	t.Run("delete removes message and index", func(t *testing.T) {
		repo := NewMessageRepository(newTestDB(t), log)
		message := testMessage(room, base)
		require.NoError(t, repo.Store(message))

		require.NoError(t, repo.Delete(message.ID.String()))

		messages, err := repo.ListByRoom(room)
		require.NoError(t, err)
		require.Empty(t, messages)

		require.ErrorIs(t, repo.Delete(message.ID.String()), errors.ErrMessageNotFound)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		repo := NewMessageRepository(newTestDB(t), log)
		require.ErrorIs(t, repo.Delete(uuid.NewString()), errors.ErrMessageNotFound)
	})
}

func TestRoomRepository(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save then get round-trips", func(t *testing.T) {
		repo := NewRoomRepository(newTestDB(t))
		room := domain.Room{
			ID:          "r1",
			Name:        "general",
			Description: "main room",
			CreatorID:   "u1",
			CreatedAt:   base,
		}

		require.NoError(t, repo.Save(room))

		got, err := repo.Get(room.ID)
		require.NoError(t, err)
		require.Equal(t, room, got)
	})

	t.Run("unknown room yields not found", func(t *testing.T) {
		repo := NewRoomRepository(newTestDB(t))
		_, err := repo.Get("missing")
		require.ErrorIs(t, err, errors.ErrRoomNotFound)
	})

	t.Run("list returns every saved room", func(t *testing.T) {
		repo := NewRoomRepository(newTestDB(t))
		require.NoError(t, repo.Save(domain.Room{ID: "r1", Name: "general", CreatedAt: base}))
		require.NoError(t, repo.Save(domain.Room{ID: "r2", Name: "random", CreatedAt: base}))

		rooms, err := repo.List()
		require.NoError(t, err)
		require.Len(t, rooms, 2)
	})
}

func TestUserRepository(t *testing.T) {
	t.Run("save then get by name round-trips", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		account := Account{
			User:         domain.User{ID: "u1", DisplayName: "alice"},
			PasswordHash: "$argon2id$...",
		}

		require.NoError(t, repo.Save(account))

		got, err := repo.GetByName("alice")
		require.NoError(t, err)
		require.Equal(t, account, got)
	})

	t.Run("unknown name yields not found", func(t *testing.T) {
		repo := NewUserRepository(newTestDB(t))
		_, err := repo.GetByName("ghost")
		require.ErrorIs(t, err, errors.ErrUserNotFound)
	})
}
