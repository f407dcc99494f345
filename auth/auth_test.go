package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-sync/contract"
	"chat-sync/domain"
)

func TestPasswordHashing(t *testing.T) {
	t.Run("hash then compare round-trips", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)

		ok, err := ComparePassword("correct horse battery staple", hash)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("wrong password does not match", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)

		ok, err := ComparePassword("incorrect", hash)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := HashPassword("same password")
		require.NoError(t, err)
		second, err := HashPassword("same password")
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("malformed hash is an error", func(t *testing.T) {
		_, err := ComparePassword("anything", "not-a-hash")
		require.Error(t, err)
	})
}

func TestTokenManager(t *testing.T) {
	user := domain.User{ID: "u1", DisplayName: "alice", AvatarURL: "https://example.com/a.png"}

	t.Run("generate then validate round-trips the identity", func(t *testing.T) {
		tokens := NewTokenManager("test-secret", time.Hour)

		token, err := tokens.Generate(user)
		require.NoError(t, err)

		got, err := tokens.Validate(token)
		require.NoError(t, err)
		require.Equal(t, user, got)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		token, err := NewTokenManager("secret-a", time.Hour).Generate(user)
		require.NoError(t, err)

		_, err = NewTokenManager("secret-b", time.Hour).Validate(token)
		require.Error(t, err)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		tokens := NewTokenManager("test-secret", -time.Minute)

		token, err := tokens.Generate(user)
		require.NoError(t, err)

		_, err = tokens.Validate(token)
		require.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := NewTokenManager("test-secret", time.Hour).Validate("not.a.token")
		require.Error(t, err)
	})
}

func TestValidateRegister(t *testing.T) {
	valid := RegisterRequest{Name: "alice", Password: "long enough secret"}

	t.Run("accepts a valid request", func(t *testing.T) {
		require.NoError(t, ValidateRegister(valid))
	})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"name too short", RegisterRequest{Name: "a", Password: valid.Password}},
		{"missing password", RegisterRequest{Name: "alice"}},
		{"password too short", RegisterRequest{Name: "alice", Password: "short"}},
		{"avatar is not a url", RegisterRequest{Name: "alice", Password: valid.Password, AvatarURL: "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, ValidateRegister(tt.req))
		})
	}
}

func TestSession(t *testing.T) {
	user := domain.User{ID: "u1", DisplayName: "alice"}

	t.Run("starts unauthenticated", func(t *testing.T) {
		session := NewSession()
		_, status := session.CurrentUser()
		require.Equal(t, contract.StatusUnauthenticated, status)
	})

	t.Run("authenticate exposes the user", func(t *testing.T) {
		session := NewSession()
		session.Authenticate(user, "token")

		got, status := session.CurrentUser()
		require.Equal(t, contract.StatusAuthenticated, status)
		require.Equal(t, user, got)
		require.Equal(t, "token", session.Token())
	})
}
