package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSortMessages(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	t.Run("orders by sent time regardless of arrival order", func(t *testing.T) {
		messages := []Message{
			{ID: idC, SentAt: base.Add(2 * time.Second)},
			{ID: idA, SentAt: base},
			{ID: idB, SentAt: base.Add(time.Second)},
		}
		SortMessages(messages)

		require.Equal(t, idA, messages[0].ID)
		require.Equal(t, idB, messages[1].ID)
		require.Equal(t, idC, messages[2].ID)
	})

	t.Run("breaks timestamp ties by id", func(t *testing.T) {
		messages := []Message{
			{ID: idB, SentAt: base},
			{ID: idA, SentAt: base},
		}
		SortMessages(messages)

		require.Equal(t, idA, messages[0].ID)
		require.Equal(t, idB, messages[1].ID)
	})

	t.Run("is stable under repeated sorting", func(t *testing.T) {
		messages := []Message{
			{ID: idB, SentAt: base},
			{ID: idC, SentAt: base.Add(time.Second)},
			{ID: idA, SentAt: base},
		}
		SortMessages(messages)
		first := append([]Message(nil), messages...)
		SortMessages(messages)

		require.Equal(t, first, messages)
	})
}

func TestMessageBefore(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	earlier := Message{ID: idB, SentAt: base}
	later := Message{ID: idA, SentAt: base.Add(time.Millisecond)}

	require.True(t, earlier.Before(later))
	require.False(t, later.Before(earlier))

	// Same instant: the order is decided by id, both directions consistent.
	tied := Message{ID: idA, SentAt: base}
	require.True(t, tied.Before(earlier))
	require.False(t, earlier.Before(tied))
}
