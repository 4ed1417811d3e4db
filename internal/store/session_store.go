package store

import (
	"context"
	"sync"

	"lab-notebook-client/internal/client"
	"lab-notebook-client/internal/dto"
	"lab-notebook-client/internal/entity"
	"lab-notebook-client/internal/pkg/logger"
)

const moduleSession = "session_store"

// SessionState is a point-in-time snapshot of the authenticated
// identity. Readers get a copy; only store operations mutate the live
// state. Invariant: IsAuthenticated implies User != nil.
type SessionState struct {
	User            *entity.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// ISessionStore is the single source of truth for who is signed in.
// Operations do not queue or cancel each other: overlapping calls are
// resolved last-write-wins, and the UI is expected to serialize them by
// disabling controls while IsLoading is set.
type ISessionStore interface {
	State() SessionState
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, username, email, password, confirmPassword string) error
	Logout(ctx context.Context)
	GetUser(ctx context.Context) bool
	SetLoading(isLoading bool)
	SetError(message string)
	ClearError()
}

type sessionStore struct {
	mu     sync.RWMutex
	api    client.IAPIClient
	logger logger.ILogger
	state  SessionState
}

func NewSessionStore(api client.IAPIClient, log logger.ILogger) ISessionStore {
	return &sessionStore{api: api, logger: log}
}

func (s *sessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *sessionStore) begin() {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *sessionStore) Login(ctx context.Context, email, password string) error {
	s.begin()

	var user entity.User
	err := s.api.Post(ctx, "/api/auth/login", &dto.LoginRequest{Email: email, Password: password}, &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = client.ErrorMessage(err, "Login failed")
		s.logger.Warn(moduleSession, "login failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	s.state.User = &user
	s.state.IsAuthenticated = true
	s.logger.Info(moduleSession, "login succeeded", map[string]interface{}{"user_id": user.Id})
	return nil
}

func (s *sessionStore) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	s.begin()

	// The password/confirmation equality check belongs to the caller's
	// form layer; the store posts both fields as received.
	req := &dto.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	}

	var user entity.User
	err := s.api.Post(ctx, "/api/auth/register", req, &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	if err != nil {
		s.state.Error = client.ErrorMessage(err, "Registration failed")
		s.logger.Warn(moduleSession, "registration failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	s.state.User = &user
	s.state.IsAuthenticated = true
	s.logger.Info(moduleSession, "registration succeeded", map[string]interface{}{"user_id": user.Id})
	return nil
}

// Logout always wipes the local identity: a failed server call must not
// leave a client that believes it is still signed in. The server error,
// if any, is recorded for observability only, never surfaced as a
// failure to the caller.
func (s *sessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state.IsLoading = true
	s.mu.Unlock()

	var res dto.LogoutResponse
	err := s.api.Delete(ctx, "/api/auth/logout", &res)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	s.state.User = nil
	s.state.IsAuthenticated = false
	if err != nil {
		s.state.Error = client.ErrorMessage(err, "Logout failed")
		s.logger.Warn(moduleSession, "server logout failed, local identity cleared anyway", map[string]interface{}{"error": err.Error()})
	}
}

// GetUser resolves identity from an existing session cookie. Failure
// here, including a plain "not logged in" 401, is an expected steady
// state: the store resets to logged out without recording an error.
func (s *sessionStore) GetUser(ctx context.Context) bool {
	s.mu.Lock()
	s.state.IsLoading = true
	s.mu.Unlock()

	var user entity.User
	err := s.api.Get(ctx, "/api/auth/me", &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	if err != nil {
		s.state.User = nil
		s.state.IsAuthenticated = false
		return false
	}

	s.state.User = &user
	s.state.IsAuthenticated = true
	return true
}

func (s *sessionStore) SetLoading(isLoading bool) {
	s.mu.Lock()
	s.state.IsLoading = isLoading
	s.mu.Unlock()
}

func (s *sessionStore) SetError(message string) {
	s.mu.Lock()
	s.state.Error = message
	s.mu.Unlock()
}

func (s *sessionStore) ClearError() {
	s.SetError("")
}
