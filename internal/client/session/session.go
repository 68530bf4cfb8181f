// Package session holds the client-side authentication state machine.
// The manager is an explicit object injected into the UI rather than
// ambient global state, so its lifecycle is visible and testable.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/arjun/auth-dashboard/internal/models"
)

// State is the client session state.
type State int

const (
	// StateUnknown is the initial state, before rehydration has run.
	StateUnknown State = iota
	// StateAnonymous means no valid token is held.
	StateAnonymous
	// StateAuthenticated means a valid token and profile are loaded.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// API is the surface of the auth service client the manager drives.
type API interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.Profile, error)
	Logout(ctx context.Context) error
	SetToken(token string)
	ClearToken()
}

// Manager tracks the current user and keeps the persisted token and the
// API client's bearer token in sync with it.
type Manager struct {
	api     API
	storage Storage

	mu    sync.Mutex
	state State
	user  *models.Profile
}

func NewManager(api API, storage Storage) *Manager {
	return &Manager{api: api, storage: storage, state: StateUnknown}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the loaded profile, or nil when anonymous.
func (m *Manager) CurrentUser() *models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	copied := *m.user
	return &copied
}

// Rehydrate restores the session from persisted state at startup. A
// stored token is trusted optimistically, then confirmed against the
// server; confirmation failure demotes to anonymous and clears the
// stored token.
func (m *Manager) Rehydrate(ctx context.Context) State {
	tok, ok := m.storage.Get(tokenKey)
	if !ok || tok == "" {
		m.mu.Lock()
		m.state = StateAnonymous
		m.mu.Unlock()
		return StateAnonymous
	}

	m.api.SetToken(tok)

	// Surface the cached profile while the fetch is in flight.
	if raw, ok := m.storage.Get(userKey); ok {
		var cached models.Profile
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			m.mu.Lock()
			m.user = &cached
			m.mu.Unlock()
		}
	}

	p, err := m.api.Me(ctx)
	if err != nil {
		m.clearSession()
		return StateAnonymous
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = p
	m.mu.Unlock()
	return StateAuthenticated
}

// Login authenticates and, on success, persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	m.establish(resp)
	return nil
}

// Register creates an account and, on success, persists the session.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) error {
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return err
	}
	m.establish(resp)
	return nil
}

// Logout drops the session. The server call only clears its cookie and
// is best-effort; the local teardown is what ends the session.
func (m *Manager) Logout(ctx context.Context) {
	_ = m.api.Logout(ctx)
	m.clearSession()
}

// HandleUnauthenticated is the global interceptor target: any request
// rejected with 401 funnels here, tearing the session down once.
func (m *Manager) HandleUnauthenticated() {
	m.clearSession()
}

func (m *Manager) establish(resp *models.AuthResponse) {
	m.api.SetToken(resp.Token)
	m.storage.Set(tokenKey, resp.Token)
	if raw, err := json.Marshal(resp.User); err == nil {
		m.storage.Set(userKey, string(raw))
	}

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()
}

func (m *Manager) clearSession() {
	m.storage.Delete(tokenKey)
	m.storage.Delete(userKey)
	m.api.ClearToken()

	m.mu.Lock()
	m.user = nil
	m.state = StateAnonymous
	m.mu.Unlock()
}
