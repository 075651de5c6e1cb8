// internal/session/session.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/store"
)

// Durable entry names.
const (
	KeyToken = "tms_token"
	KeyUser  = "tms_user"
)

// Authenticator performs the login and register mutations.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthPayload, error)
	Register(ctx context.Context, input models.RegisterInput) (*models.AuthPayload, error)
}

// Purger drops cached API responses.
type Purger interface {
	Reset()
}

// Manager owns the current identity and bearer token. Token and user are
// always set and cleared together, in memory and in durable storage.
type Manager struct {
	store  store.SessionStore
	auth   Authenticator
	cache  Purger
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

// NewManager builds an empty session. Call Hydrate before first use.
func NewManager(st store.SessionStore, auth Authenticator, cache Purger, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: st, auth: auth, cache: cache, logger: logger}
}

// Hydrate restores a persisted session. A session is restored only when
// both entries exist and the user decodes to an identity with an id; a
// partial or empty pair is cleared.
func (m *Manager) Hydrate(ctx context.Context) error {
	token, hasToken, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	rawUser, hasUser, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read session user: %w", err)
	}

	if !hasToken && !hasUser {
		return nil
	}

	var user models.User
	if hasToken && hasUser && token != "" {
		if err := json.Unmarshal([]byte(rawUser), &user); err == nil && user.ID != "" {
			m.set(token, &user)
			return nil
		}
	}

	m.logger.Warn("discarding incomplete persisted session", "has_token", hasToken, "has_user", hasUser)
	if err := m.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear incomplete session: %w", err)
	}
	return nil
}

// Login authenticates and stores the session. Server errors are returned
// untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	payload, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, payload)
}

// Register creates an account and stores the resulting session.
func (m *Manager) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	payload, err := m.auth.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, payload)
}

func (m *Manager) establish(ctx context.Context, payload *models.AuthPayload) (*models.User, error) {
	if payload == nil || payload.Token == "" || payload.User == nil {
		return nil, ErrIncompletePayload
	}
	raw, err := json.Marshal(payload.User)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Save(ctx, map[string]string{
		KeyToken: payload.Token,
		KeyUser:  string(raw),
	}); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	user := *payload.User
	m.set(payload.Token, &user)
	m.logger.Info("session established", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// Logout clears durable storage, memory and the response cache. When the
// durable entries cannot be removed the session stays signed in and the
// error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	m.wipe("logout")
	return nil
}

// Invalidate tears the session down after the API rejected the token. The
// token is dead either way, so memory is cleared even if the durable
// entries survive.
func (m *Manager) Invalidate(ctx context.Context) error {
	err := m.store.Delete(ctx, KeyToken, KeyUser)
	m.wipe("unauthenticated")
	if err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

func (m *Manager) wipe(reason string) {
	m.set("", nil)
	if m.cache != nil {
		m.cache.Reset()
	}
	m.logger.Info("session cleared", "reason", reason)
}

func (m *Manager) set(token string, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = user
}

// Token is the bearer token for the next request, empty without a session.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.IsAdmin()
}

// ExpiresAt reads the exp claim of the token without verifying it. It is
// informational only; the API remains the judge of validity.
func (m *Manager) ExpiresAt() (time.Time, error) {
	token := m.Token()
	if token == "" {
		return time.Time{}, ErrNoExpiry
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrNoExpiry
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
