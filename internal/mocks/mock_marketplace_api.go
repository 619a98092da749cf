package mocks

import (
	"context"

	"github.com/you/dairyshell/domain"
)

// MockMarketplaceAPI implements domain.MarketplaceAPI interface for testing
type MockMarketplaceAPI struct {
	LoginFunc       func(ctx context.Context, identifier, password string) (*domain.LoginResult, error)
	RegisterFunc    func(ctx context.Context, reg *domain.Registration) (string, error)
	VerifyEmailFunc func(ctx context.Context, email, code string) (string, error)
	DoFunc          func(ctx context.Context, method, path string, body, out interface{}) error

	LoginCalls    int
	RegisterCalls []domain.Registration
}

// NewMockMarketplaceAPI creates a new MockMarketplaceAPI with default behaviors
func NewMockMarketplaceAPI() *MockMarketplaceAPI {
	return &MockMarketplaceAPI{}
}

// Login checks credentials
func (m *MockMarketplaceAPI) Login(ctx context.Context, identifier, password string) (*domain.LoginResult, error) {
	m.LoginCalls++
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	// Default behavior: invalid credentials
	return nil, domain.ErrInvalidCredentials
}

// Register submits a registration
func (m *MockMarketplaceAPI) Register(ctx context.Context, reg *domain.Registration) (string, error) {
	m.RegisterCalls = append(m.RegisterCalls, *reg)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return "Verification code sent! Check your email.", nil
}

// VerifyEmail submits a verification code
func (m *MockMarketplaceAPI) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, email, code)
	}
	return "Email successfully verified!", nil
}

// Do performs a generic request
func (m *MockMarketplaceAPI) Do(ctx context.Context, method, path string, body, out interface{}) error {
	if m.DoFunc != nil {
		return m.DoFunc(ctx, method, path, body, out)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.MarketplaceAPI = (*MockMarketplaceAPI)(nil)
