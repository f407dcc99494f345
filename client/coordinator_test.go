package client

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-sync/domain"
	"chat-sync/mocks"
	"chat-sync/relay"
)

// fakeLink records published frames without touching the network.
type fakeLink struct {
	notifications chan Notification
	published     []publishedFrame
	publishErr    error
	left          bool
}

type publishedFrame struct {
	kind        string
	excludeSelf bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{notifications: make(chan Notification, 16)}
}

func (f *fakeLink) Run(ctx context.Context)                 {}
func (f *fakeLink) Notifications() <-chan Notification      { return f.notifications }
func (f *fakeLink) Leave(ctx context.Context) error         { f.left = true; return nil }
func (f *fakeLink) Publish(ctx context.Context, kind string, excludeSelf bool) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedFrame{kind: kind, excludeSelf: excludeSelf})
	return nil
}

var (
	testRoom = domain.RoomID("general")
	testSelf = domain.User{ID: "self", DisplayName: "me"}
	other    = domain.User{ID: "u2", DisplayName: "bob"}
)

func newTestCoordinator(t *testing.T, link RelayLink,
	queries *mocks.MockQueryService, commands *mocks.MockCommandService) *Coordinator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewCoordinator(log, testRoom, testSelf, link, queries, commands, time.Second)
}

func TestCoordinatorSubmitMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists first then publishes room-changed to everyone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		queries := mocks.NewMockQueryService(ctrl)
		commands := mocks.NewMockCommandService(ctrl)
		link := newFakeLink()
		c := newTestCoordinator(t, link, queries, commands)

		commands.EXPECT().CreateMessage(ctx, testRoom, "hello").
			Return(domain.Message{ID: uuid.New(), Content: "hello"}, nil)

		require.NoError(t, c.SubmitMessage(ctx, "hello"))
		require.Equal(t, []publishedFrame{
			{kind: relay.KindRoomChanged, excludeSelf: false},
		}, link.published)

		// No local splice: the rendered list only changes through a pull.
		messages, _ := c.Messages()
		require.Empty(t, messages)
	})

	t.Run("publishes nothing when the command fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		queries := mocks.NewMockQueryService(ctrl)
		commands := mocks.NewMockCommandService(ctrl)
		link := newFakeLink()
		c := newTestCoordinator(t, link, queries, commands)

		commands.EXPECT().CreateMessage(ctx, testRoom, "hello").
			Return(domain.Message{}, context.DeadlineExceeded)

		require.Error(t, c.SubmitMessage(ctx, "hello"))
		require.Empty(t, link.published)
	})

	t.Run("a failed publish does not fail the submission", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		queries := mocks.NewMockQueryService(ctrl)
		commands := mocks.NewMockCommandService(ctrl)
		link := newFakeLink()
		link.publishErr = context.DeadlineExceeded
		c := newTestCoordinator(t, link, queries, commands)

		commands.EXPECT().CreateMessage(ctx, testRoom, "hello").
			Return(domain.Message{ID: uuid.New()}, nil)

		require.NoError(t, c.SubmitMessage(ctx, "hello"))
	})
}

func TestCoordinatorKeystroke(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes typing excluding self", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		link := newFakeLink()
		c := newTestCoordinator(t, link,
			mocks.NewMockQueryService(ctrl), mocks.NewMockCommandService(ctrl))

		c.Keystroke(ctx, false)
		require.Equal(t, []publishedFrame{
			{kind: relay.KindUserTyping, excludeSelf: true},
		}, link.published)
	})

	t.Run("the submitting key never emits typing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		link := newFakeLink()
		c := newTestCoordinator(t, link,
			mocks.NewMockQueryService(ctrl), mocks.NewMockCommandService(ctrl))

		c.Keystroke(ctx, true)
		require.Empty(t, link.published)
	})
}

func TestCoordinatorDispatch(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("room-changed pulls fresh state and clears typing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		queries := mocks.NewMockQueryService(ctrl)
		link := newFakeLink()
		c := newTestCoordinator(t, link, queries, mocks.NewMockCommandService(ctrl))
		c.now = func() time.Time { return base }

		// Bob was typing just before his message landed.
		c.presence.Record(other, base)
		require.Len(t, c.TypingUsers(), 1)

		unsorted := []domain.Message{
			{ID: uuid.New(), SentAt: base.Add(time.Second), Content: "second"},
			{ID: uuid.New(), SentAt: base, Content: "first"},
		}
		queries.EXPECT().GetMessages(ctx, testRoom).Return(unsorted, nil)

		c.dispatch(ctx, Notification{Kind: KindRoomChanged})
		c.applyPull(<-c.pulls)

		messages, flags := c.Messages()
		require.Len(t, messages, 2)
		require.Equal(t, "first", messages[0].Content)
		require.Equal(t, "second", messages[1].Content)
		require.Len(t, flags, 2)
		require.Empty(t, c.TypingUsers(), "typing must be cleared on room-changed")
	})

	t.Run("connect triggers a forced pull", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		queries := mocks.NewMockQueryService(ctrl)
		link := newFakeLink()
		c := newTestCoordinator(t, link, queries, mocks.NewMockCommandService(ctrl))

		queries.EXPECT().GetMessages(ctx, testRoom).
			Return([]domain.Message{{ID: uuid.New(), Content: "missed"}}, nil)

		c.dispatch(ctx, Notification{Kind: KindConnected})
		c.applyPull(<-c.pulls)

		messages, _ := c.Messages()
		require.Len(t, messages, 1)
	})

	t.Run("a failed pull keeps the previous view", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		queries := mocks.NewMockQueryService(ctrl)
		link := newFakeLink()
		c := newTestCoordinator(t, link, queries, mocks.NewMockCommandService(ctrl))

		queries.EXPECT().GetMessages(ctx, testRoom).
			Return([]domain.Message{{ID: uuid.New(), Content: "kept"}}, nil)
		c.dispatch(ctx, Notification{Kind: KindRoomChanged})
		c.applyPull(<-c.pulls)

		queries.EXPECT().GetMessages(ctx, testRoom).
			Return(nil, context.DeadlineExceeded)
		c.dispatch(ctx, Notification{Kind: KindRoomChanged})
		c.applyPull(<-c.pulls)

		messages, _ := c.Messages()
		require.Len(t, messages, 1)
		require.Equal(t, "kept", messages[0].Content)
	})

	t.Run("user-typing records the sender at the current time", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		link := newFakeLink()
		c := newTestCoordinator(t, link,
			mocks.NewMockQueryService(ctrl), mocks.NewMockCommandService(ctrl))
		c.now = func() time.Time { return base }

		c.dispatch(ctx, Notification{Kind: KindUserTyping, User: other})

		typing := c.TypingUsers()
		require.Len(t, typing, 1)
		require.Equal(t, other, typing[0].User)
		require.Equal(t, base, typing[0].LastSeenAt)
	})

	t.Run("typing entries expire without a refresh", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		link := newFakeLink()
		c := newTestCoordinator(t, link,
			mocks.NewMockQueryService(ctrl), mocks.NewMockCommandService(ctrl))

		now := base
		c.now = func() time.Time { return now }
		c.dispatch(ctx, Notification{Kind: KindUserTyping, User: other})
		require.Len(t, c.TypingUsers(), 1)

		now = base.Add(2 * time.Second)
		require.Empty(t, c.TypingUsers())
	})
}

func TestCoordinatorRunLeavesOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	link := newFakeLink()
	c := newTestCoordinator(t, link,
		mocks.NewMockQueryService(ctrl), mocks.NewMockCommandService(ctrl))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop on cancellation")
	}
	require.True(t, link.left)
}
