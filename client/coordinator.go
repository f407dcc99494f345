package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/presence"
	"chat-sync/projection"
	"chat-sync/relay"
)

// RelayLink is the slice of Link the coordinator depends on.
type RelayLink interface {
	Run(ctx context.Context)
	Notifications() <-chan Notification
	Publish(ctx context.Context, kind string, excludeSelf bool) error
	Leave(ctx context.Context) error
}

// Coordinator reconciles one open room view with authoritative state.
//
// All state mutation happens on the dispatch loop goroutine: relay
// notifications and pull results arrive on channels and are switched on by
// kind. The rendered list is therefore always the result of a server pull,
// never a locally spliced guess.
type Coordinator struct {
	room      domain.RoomID
	self      domain.User
	link      RelayLink
	queries   contract.QueryService
	commands  contract.CommandService
	presence  *presence.Aggregator
	log       *slog.Logger
	typingTTL time.Duration
	now       func() time.Time

	pulls chan pullResult

	mu       sync.RWMutex
	messages []domain.Message
}

type pullResult struct {
	messages []domain.Message
	err      error
}

func NewCoordinator(log *slog.Logger, room domain.RoomID, self domain.User,
	link RelayLink, queries contract.QueryService, commands contract.CommandService,
	typingTTL time.Duration) *Coordinator {
	if typingTTL <= 0 {
		typingTTL = presence.DefaultTTL
	}
	return &Coordinator{
		room:      room,
		self:      self,
		link:      link,
		queries:   queries,
		commands:  commands,
		presence:  presence.NewAggregator(),
		log:       log,
		typingTTL: typingTTL,
		now:       time.Now,
		pulls:     make(chan pullResult, 1),
	}
}

// Run starts the link and consumes notifications until ctx is cancelled,
// then leaves the room. A pull finishing after cancellation is discarded
// along with the loop, never applied to a closed view.
func (c *Coordinator) Run(ctx context.Context) {
	go c.link.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			leaveCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = c.link.Leave(leaveCtx)
			cancel()
			return
		case n := <-c.link.Notifications():
			c.dispatch(ctx, n)
		case res := <-c.pulls:
			c.applyPull(res)
		}
	}
}

func (c *Coordinator) dispatch(ctx context.Context, n Notification) {
	switch n.Kind {
	case KindConnected, KindRoomChanged:
		// Invalidate-and-pull: the notification carries no payload; the
		// query service is the single source of truth. A message landed,
		// so typing indicators for this exchange are stale too.
		c.startPull(ctx)
		c.presence.ClearAll()
	case KindUserTyping:
		c.presence.Record(n.User, c.now())
	}
}

// startPull queries asynchronously and feeds the result back into the
// dispatch loop. Two racing pulls converge because the later application
// wins and pulls are idempotent.
func (c *Coordinator) startPull(ctx context.Context) {
	go func() {
		messages, err := c.queries.GetMessages(ctx, c.room)
		select {
		case c.pulls <- pullResult{messages: messages, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Coordinator) applyPull(res pullResult) {
	if res.err != nil {
		c.log.Warn("pull failed, waiting for next notification",
			"room", c.room, "error", res.err)
		return
	}
	domain.SortMessages(res.messages)
	c.mu.Lock()
	c.messages = res.messages // replace, never merge
	c.mu.Unlock()
}

// SubmitMessage persists through the command service first, then notifies
// every viewer (sender included) via the relay. The new message is never
// spliced into local state: the sender converges through its own pull like
// everyone else. On persistence failure nothing is published, so no other
// client is misled.
func (c *Coordinator) SubmitMessage(ctx context.Context, content string) error {
	if _, err := c.commands.CreateMessage(ctx, c.room, content); err != nil {
		return err
	}
	if err := c.link.Publish(ctx, relay.KindRoomChanged, false); err != nil {
		c.log.Warn("room-changed publish failed after persist",
			"room", c.room, "error", err)
	}
	return nil
}

// Keystroke reports a compose keypress. The key that triggers submission is
// suppressed; every other key publishes a typing event excluding self. No
// further debounce: the aggregator's TTL absorbs repeats.
func (c *Coordinator) Keystroke(ctx context.Context, submits bool) {
	if submits {
		return
	}
	if err := c.link.Publish(ctx, relay.KindUserTyping, true); err != nil {
		c.log.Debug("typing event dropped", "room", c.room, "error", err)
	}
}

// Messages returns the current total-ordered list with its display flags.
func (c *Coordinator) Messages() ([]domain.Message, []projection.DisplayFlags) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	messages := append([]domain.Message(nil), c.messages...)
	return messages, projection.Group(messages)
}

// TypingUsers returns who is composing right now. Self never appears: the
// relay excludes the publisher's own typing events.
func (c *Coordinator) TypingUsers() []presence.TypingEntry {
	return c.presence.Snapshot(c.now(), c.typingTTL)
}
