package mocks

import (
	"context"

	"github.com/you/dairyshell/domain"
)

// MockSessionService implements domain.SessionService interface for testing
type MockSessionService struct {
	HydrateFunc   func(ctx context.Context) error
	LoginFunc     func(ctx context.Context, user *domain.User, token string) error
	LogoutFunc    func(ctx context.Context)
	SnapshotFunc  func() domain.SessionSnapshot
	TokenFunc     func() string
	SubscribeFunc func(observer domain.SessionObserver) func()

	LogoutCalls int
}

// NewMockSessionService creates a new MockSessionService with default behaviors
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

// Hydrate restores the session
func (m *MockSessionService) Hydrate(ctx context.Context) error {
	if m.HydrateFunc != nil {
		return m.HydrateFunc(ctx)
	}
	return nil
}

// Login starts a session
func (m *MockSessionService) Login(ctx context.Context, user *domain.User, token string) error {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, user, token)
	}
	return nil
}

// Logout clears the session
func (m *MockSessionService) Logout(ctx context.Context) {
	m.LogoutCalls++
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx)
	}
}

// Snapshot returns the session state
func (m *MockSessionService) Snapshot() domain.SessionSnapshot {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	// Default behavior: hydrated guest
	return domain.SessionSnapshot{Identity: domain.Identity{Kind: domain.IdentityGuest}}
}

// Token returns the bearer token
func (m *MockSessionService) Token() string {
	if m.TokenFunc != nil {
		return m.TokenFunc()
	}
	return m.Snapshot().Token
}

// Subscribe registers an observer
func (m *MockSessionService) Subscribe(observer domain.SessionObserver) func() {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(observer)
	}
	return func() {}
}

// Compile-time interface compliance verification
var _ domain.SessionService = (*MockSessionService)(nil)
