package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/domain/event"
)

// Server terminates relay websocket connections.
//
// Each connection gets a buffered Sink registered in the rooms it joins and
// a write loop that drains it. The read loop consumes join/leave/publish
// frames until the client disconnects; cleanup leaves every joined room so
// the registry never holds dead handles.
type Server struct {
	log        *slog.Logger
	registry   *Registry
	hub        *Hub
	tokens     *auth.TokenManager
	bufferSize int
}

func NewServer(log *slog.Logger, registry *Registry, hub *Hub,
	tokens *auth.TokenManager, bufferSize int) *Server {
	return &Server{log: log, registry: registry, hub: hub, tokens: tokens, bufferSize: bufferSize}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := s.tokens.Validate(BearerToken(r))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}

	clientID := uuid.NewString()
	sink := NewSink(s.bufferSize)
	joined := make(map[domain.RoomID]struct{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer func() {
		for room := range joined {
			s.registry.Leave(room, clientID)
		}
		_ = ws.CloseNow()
		s.log.Debug("client disconnected", "client_id", clientID, "user", user.ID)
	}()

	go func() {
		defer cancel()
		s.writeLoop(ctx, ws, sink)
	}()

	for {
		var frame ClientFrame
		if err := wsjson.Read(ctx, ws, &frame); err != nil {
			if !isExpectedClose(ctx, err) {
				s.log.Warn("read failed", "client_id", clientID, "error", err)
			}
			return
		}

		room := domain.RoomID(frame.Room)
		switch frame.Type {
		case FrameJoin:
			s.registry.Join(room, clientID, sink)
			joined[room] = struct{}{}
		case FrameLeave:
			s.registry.Leave(room, clientID)
			delete(joined, room)
		case FramePublish:
			evt, ok := s.toEvent(frame, room, user)
			if !ok {
				s.log.Debug("unknown event kind ignored", "kind", frame.Kind)
				continue
			}
			excluding := ""
			if frame.ExcludeSelf {
				excluding = clientID
			}
			s.hub.Publish(ctx, room, evt, excluding)
		}
	}
}

// toEvent builds the relayed event. Typing identity comes from the
// verified token, never from the frame.
func (s *Server) toEvent(frame ClientFrame, room domain.RoomID, user domain.User) (event.RoomEvent, bool) {
	switch frame.Kind {
	case KindRoomChanged:
		return event.RoomChanged{Room: room}, true
	case KindUserTyping:
		return event.UserTyping{Room: room, User: user}, true
	}
	return nil, false
}

func (s *Server) writeLoop(ctx context.Context, ws *websocket.Conn, sink *Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-sink.Events:
			if err := wsjson.Write(ctx, ws, ToFrame(e)); err != nil {
				return
			}
		}
	}
}

// BearerToken extracts the identity token from the Authorization header or,
// for browser websocket clients that cannot set headers, the token query
// parameter.
func BearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

func isExpectedClose(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
