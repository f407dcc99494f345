package client

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/relay"
)

// NotificationKind tags events flowing from the link into the coordinator's
// dispatch loop.
type NotificationKind int

const (
	// KindConnected is synthesized on every successful (re)connect so the
	// consumer performs a forced pull and converges after any gap.
	KindConnected NotificationKind = iota
	KindRoomChanged
	KindUserTyping
)

// Notification is the single tagged union the dispatch loop switches on.
type Notification struct {
	Kind NotificationKind
	User domain.User // set for KindUserTyping
}

// LinkConfig controls how the link connects.
type LinkConfig struct {
	URL              string // relay websocket endpoint, e.g. ws://host:8080/ws
	Token            string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
}

func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		InitialBackoff:   500 * time.Millisecond,
		MaxBackoff:       15 * time.Second,
	}
}

// Link owns the relay connection for one room view. It is an explicitly
// scoped object injected into the coordinator, not ambient shared state.
type Link struct {
	cfg  LinkConfig
	room domain.RoomID
	log  *slog.Logger

	mu   sync.Mutex
	conn *conn

	notifications chan Notification
}

func NewLink(cfg LinkConfig, room domain.RoomID, log *slog.Logger) *Link {
	return &Link{
		cfg:           cfg,
		room:          room,
		log:           log,
		notifications: make(chan Notification, 16),
	}
}

// Notifications is the channel the coordinator's dispatch loop consumes.
func (l *Link) Notifications() <-chan Notification { return l.notifications }

// Run keeps the link alive until ctx is cancelled, reconnecting with
// exponential backoff. The join frame is re-sent on every successful dial,
// which makes connecting idempotent from the consumer's point of view.
func (l *Link) Run(ctx context.Context) {
	backoff := l.cfg.InitialBackoff
	for {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.log.Warn("relay connection lost", "room", l.room, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.cfg.MaxBackoff {
			backoff = l.cfg.MaxBackoff
		}
	}
}

// session dials once, joins the room, and reads frames until the
// connection fails or ctx is cancelled.
func (l *Link) session(ctx context.Context) error {
	dialCtx := ctx
	if l.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, l.cfg.HandshakeTimeout)
		defer cancel()
	}

	endpoint := l.cfg.URL + "?token=" + url.QueryEscape(l.cfg.Token)
	ws, _, err := websocket.Dial(dialCtx, endpoint, nil)
	if err != nil {
		return err
	}
	c := newConn(ws, 0, l.cfg.WriteTimeout)

	join := relay.ClientFrame{Type: relay.FrameJoin, Room: string(l.room)}
	if err := c.write(ctx, join); err != nil {
		_ = c.close(websocket.StatusInternalError, "join failed")
		return err
	}

	l.setConn(c)
	defer l.setConn(nil)
	defer c.close(websocket.StatusNormalClosure, "closing")

	l.emit(ctx, Notification{Kind: KindConnected})

	for {
		var frame relay.ServerFrame
		if err := c.read(ctx, &frame); err != nil {
			if isExpectedDisconnect(ctx, err) {
				return nil
			}
			return err
		}
		switch frame.Kind {
		case relay.KindRoomChanged:
			l.emit(ctx, Notification{Kind: KindRoomChanged})
		case relay.KindUserTyping:
			if frame.User != nil {
				l.emit(ctx, Notification{Kind: KindUserTyping, User: *frame.User})
			}
		}
	}
}

// Publish sends an event frame for the link's room. ErrNotConnected while
// the link is down: typing events are droppable by design, and a lost
// room-changed is recovered by the reconnect pull.
func (l *Link) Publish(ctx context.Context, kind string, excludeSelf bool) error {
	l.mu.Lock()
	c := l.conn
	l.mu.Unlock()
	if c == nil {
		return errors.ErrNotConnected
	}
	return c.write(ctx, relay.ClientFrame{
		Type:        relay.FramePublish,
		Room:        string(l.room),
		Kind:        kind,
		ExcludeSelf: excludeSelf,
	})
}

// Leave tells the relay the room view is closing.
func (l *Link) Leave(ctx context.Context) error {
	l.mu.Lock()
	c := l.conn
	l.mu.Unlock()
	if c == nil {
		return errors.ErrNotConnected
	}
	return c.write(ctx, relay.ClientFrame{Type: relay.FrameLeave, Room: string(l.room)})
}

func (l *Link) setConn(c *conn) {
	l.mu.Lock()
	l.conn = c
	l.mu.Unlock()
}

func (l *Link) emit(ctx context.Context, n Notification) {
	select {
	case l.notifications <- n:
	case <-ctx.Done():
	}
}
