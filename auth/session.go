package auth

import (
	"sync"

	"chat-sync/contract"
	"chat-sync/domain"
)

// Session is the client-side identity provider: it holds the bearer token
// and the user decoded from it. The sync layer only connects and queries
// once the session reports StatusAuthenticated.
type Session struct {
	mu     sync.RWMutex
	user   domain.User
	token  string
	status contract.AuthStatus
}

func NewSession() *Session {
	return &Session{status: contract.StatusUnauthenticated}
}

// Authenticate installs the identity obtained from a successful login.
func (s *Session) Authenticate(user domain.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
	s.status = contract.StatusAuthenticated
}

func (s *Session) CurrentUser() (domain.User, contract.AuthStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.status
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
