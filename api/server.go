// Package api exposes the chat service over HTTP JSON. The relay websocket
// is mounted on the same mux and shares the bearer-token identity.
package api

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/relay"
	"chat-sync/services"
)

type Server struct {
	log    *slog.Logger
	chat   *services.ChatService
	auths  *services.AuthService
	tokens *auth.TokenManager
}

func NewServer(log *slog.Logger, chat *services.ChatService,
	auths *services.AuthService, tokens *auth.TokenManager) *Server {
	return &Server{log: log, chat: chat, auths: auths, tokens: tokens}
}

// Routes registers every endpoint, including the relay websocket handler.
func (s *Server) Routes(mux *http.ServeMux, relayHandler http.Handler) {
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.Handle("GET /api/rooms", s.authenticated(s.handleListRooms))
	mux.Handle("POST /api/rooms", s.authenticated(s.handleCreateRoom))
	mux.Handle("GET /api/rooms/{id}", s.authenticated(s.handleGetRoom))
	mux.Handle("DELETE /api/rooms/{id}", s.authenticated(s.handleDeleteRoom))
	mux.Handle("GET /api/rooms/{id}/messages", s.authenticated(s.handleGetMessages))
	mux.Handle("POST /api/rooms/{id}/messages", s.authenticated(s.handleCreateMessage))
	mux.Handle("DELETE /api/messages/{id}", s.authenticated(s.handleDeleteMessage))
	mux.Handle("/ws", relayHandler)
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, token, err := s.auths.Register(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, token, err := s.auths.Login(req.Name, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request, _ domain.User) {
	rooms, err := s.chat.ListRooms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createRoomRequest
	if !s.decode(w, r, &req) {
		return
	}
	room, err := s.chat.CreateRoom(r.Context(), user, req.Name, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, _ domain.User) {
	room, err := s.chat.GetRoom(r.Context(), domain.RoomID(r.PathValue("id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if err := s.chat.DeleteRoom(r.Context(), domain.RoomID(r.PathValue("id"))); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request, _ domain.User) {
	messages, err := s.chat.GetMessages(r.Context(), domain.RoomID(r.PathValue("id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	message, err := s.chat.CreateMessage(r.Context(), user, domain.RoomID(r.PathValue("id")), req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, message)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if err := s.chat.DeleteMessage(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type authedHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.tokens.Validate(relay.BearerToken(r))
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next(w, r, user)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case goerrors.Is(err, errors.ErrRoomNotFound),
		goerrors.Is(err, errors.ErrMessageNotFound),
		goerrors.Is(err, errors.ErrUserNotFound):
		status = http.StatusNotFound
	case goerrors.Is(err, errors.ErrEmptyContent),
		goerrors.Is(err, errors.ErrContentTooLong):
		status = http.StatusBadRequest
	case goerrors.Is(err, errors.ErrUserExists):
		status = http.StatusConflict
	case goerrors.Is(err, errors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case goerrors.As(err, new(validator.ValidationErrors)):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
