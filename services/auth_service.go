package services

import (
	"log/slog"

	"github.com/google/uuid"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/repositories"
)

// AuthService is the identity provider: it owns accounts and issues the
// tokens the relay and API verify.
type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
	log    *slog.Logger
}

func NewAuthService(log *slog.Logger, users repositories.UserRepository,
	tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Register creates an account and returns the user with a signed token.
func (s *AuthService) Register(req auth.RegisterRequest) (domain.User, string, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return domain.User{}, "", err
	}
	if _, err := s.users.GetByName(req.Name); err == nil {
		return domain.User{}, "", errors.ErrUserExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, "", err
	}
	user := domain.User{
		ID:          uuid.NewString(),
		DisplayName: req.Name,
		AvatarURL:   req.AvatarURL,
	}
	if err := s.users.Save(repositories.Account{User: user, PasswordHash: hash}); err != nil {
		return domain.User{}, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return domain.User{}, "", err
	}
	s.log.Info("account created", "user", user.DisplayName)
	return user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// Unknown user and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(name, password string) (domain.User, string, error) {
	account, err := s.users.GetByName(name)
	if err != nil {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}
	ok, err := auth.ComparePassword(password, account.PasswordHash)
	if err != nil || !ok {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(account.User)
	if err != nil {
		return domain.User{}, "", err
	}
	return account.User, token, nil
}
