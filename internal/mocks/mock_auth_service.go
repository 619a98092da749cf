package mocks

import (
	"context"

	"github.com/you/dairyshell/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	SignInFunc      func(ctx context.Context, identifier, password string) (*domain.User, error)
	RegisterFunc    func(ctx context.Context, reg domain.Registration) (string, error)
	VerifyEmailFunc func(ctx context.Context, email, code string) (string, error)
	SignOutFunc     func(ctx context.Context)

	SignOutCalls int
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// SignIn signs a user in
func (m *MockAuthService) SignIn(ctx context.Context, identifier, password string) (*domain.User, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, identifier, password)
	}
	// Default behavior: return a mock buyer
	return &domain.User{
		ID:        "mock-user",
		UserName:  identifier,
		UserField: domain.UserFieldBuyer,
	}, nil
}

// Register submits a registration
func (m *MockAuthService) Register(ctx context.Context, reg domain.Registration) (string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return "Verification code sent! Check your email.", nil
}

// VerifyEmail confirms an email address
func (m *MockAuthService) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, email, code)
	}
	return "Email successfully verified!", nil
}

// SignOut ends the session
func (m *MockAuthService) SignOut(ctx context.Context) {
	m.SignOutCalls++
	if m.SignOutFunc != nil {
		m.SignOutFunc(ctx)
	}
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
