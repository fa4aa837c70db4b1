package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/credstore"
	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/logging"
)

// LoginAPI is the slice of the remote API the manager needs.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
}

// LoginResult carries what a successful login returns.
type LoginResult struct {
	Token        string
	RefreshToken string
	User         domain.User
}

// Manager owns the credential lifecycle: login stores the token pair and
// user record, logout clears them. Credentials are never mutated by voting
// or commenting.
type Manager struct {
	api    LoginAPI
	creds  credstore.Store
	logger *logging.Logger
}

func NewManager(api LoginAPI, creds credstore.Store, logger *logging.Logger) *Manager {
	return &Manager{
		api:    api,
		creds:  creds,
		logger: logger,
	}
}

func (m *Manager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	result, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.creds.SetAccessToken(result.Token); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	if result.RefreshToken != "" {
		if err := m.creds.SetRefreshToken(result.RefreshToken); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	}
	if err := m.creds.SetUser(&result.User); err != nil {
		return nil, fmt.Errorf("store user record: %w", err)
	}

	m.logger.Info("logged in",
		zap.String("user_id", result.User.ID),
	)
	return &result.User, nil
}

// Logout clears local credentials. The server-side session is invalidated
// on a best-effort basis; a failed remote call never leaves credentials
// behind.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed, clearing local credentials anyway",
			zap.Error(err),
		)
	}
	if err := m.creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	m.logger.Info("logged out")
	return nil
}

// CurrentUser restores the persisted user record, or nil when logged out.
func (m *Manager) CurrentUser() (*domain.User, error) {
	if !credstore.IsAuthenticated(m.creds) {
		return nil, nil
	}
	return m.creds.User()
}

// UserID returns the identifier to attach to vote submissions: the token
// subject when the token parses, falling back to the stored user record.
// Anonymous sessions return the empty string.
func (m *Manager) UserID() string {
	token, err := m.creds.AccessToken()
	if err != nil || token == "" {
		return ""
	}
	if claims, err := InspectToken(token); err == nil {
		if sub := claims.Subject(); sub != "" {
			return sub
		}
	}
	if user, err := m.creds.User(); err == nil && user != nil {
		return user.ID
	}
	return ""
}
