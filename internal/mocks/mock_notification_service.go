package mocks

import (
	"time"

	"github.com/you/dairyshell/domain"
)

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	Sent []domain.Notification
}

// NewMockNotificationService creates a new MockNotificationService
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// Success records a success toast
func (m *MockNotificationService) Success(title, detail string) {
	m.Sent = append(m.Sent, domain.Notification{Level: "success", Title: title, Detail: detail, CreatedAt: time.Now()})
}

// Error records an error toast
func (m *MockNotificationService) Error(title, detail string) {
	m.Sent = append(m.Sent, domain.Notification{Level: "error", Title: title, Detail: detail, CreatedAt: time.Now()})
}

// Recent returns every recorded toast
func (m *MockNotificationService) Recent() []domain.Notification {
	return m.Sent
}

// Last returns the most recent toast, or the zero value
func (m *MockNotificationService) Last() domain.Notification {
	if len(m.Sent) == 0 {
		return domain.Notification{}
	}
	return m.Sent[len(m.Sent)-1]
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
