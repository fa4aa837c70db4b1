package credstore

import (
	"github.com/gundriai/merovote-app/internal/domain"
)

// Storage keys. Each entry is independently settable and clearable;
// "is authenticated" means the access token key is present.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
)

// Store persists the local credential: an opaque access token, an optional
// refresh token and the user record. It is read-only during voting and
// commenting; only explicit login/logout mutate it.
type Store interface {
	AccessToken() (string, error)
	SetAccessToken(token string) error

	RefreshToken() (string, error)
	SetRefreshToken(token string) error

	User() (*domain.User, error)
	SetUser(user *domain.User) error

	// Clear removes the token pair and the user record.
	Clear() error

	Close() error
}

// IsAuthenticated reports whether an access token is present.
func IsAuthenticated(s Store) bool {
	token, err := s.AccessToken()
	return err == nil && token != ""
}
