package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
	"github.com/you/dairyshell/internal/mocks"
)

// createSessionServiceForTest creates a SessionService over a mock store
func createSessionServiceForTest(t *testing.T, store domain.KeyValueStore) *SessionServiceImpl {
	t.Helper()

	if store == nil {
		store = mocks.NewMockKeyValueStore()
	}
	return NewSessionService(store, SessionConfig{StorageTimeout: time.Second}, logging.Discard())
}

// createAdmin creates an admin user record for testing
func createAdmin(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:        "64f000000000000000000001",
		FirstName: "Ada",
		LastName:  "Admin",
		UserName:  "ada",
		Email:     "admin@example.com",
		Role:      domain.RoleAdmin,
	}
}

// createBuyer creates a buyer user record for testing
func createBuyer(t *testing.T) *domain.User {
	t.Helper()

	login := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:          "64f000000000000000000002",
		FirstName:   "Bola",
		LastName:    "Buyer",
		UserName:    "bola",
		Email:       "buyer@example.com",
		PhoneNumber: "2348011112222",
		City:        "Ibadan",
		UserField:   domain.UserFieldBuyer,
		LastLoginAt: &login,
	}
}

// createSeller creates a seller user record for testing
func createSeller(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:        "64f000000000000000000003",
		FirstName: "Sade",
		LastName:  "Seller",
		UserName:  "sade",
		Email:     "seller@example.com",
		UserField: domain.UserFieldSeller,
	}
}

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// recordingObserver collects session events in delivery order
type recordingObserver struct {
	mu     sync.Mutex
	events []*domain.SessionEvent
}

func (r *recordingObserver) OnSessionEvent(ctx context.Context, event *domain.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) types() []domain.SessionEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionEventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recordingObserver) last() *domain.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}
