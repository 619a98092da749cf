package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionEventType defines the type of session event
type SessionEventType string

const (
	SessionHydratedEvent SessionEventType = "SESSION_HYDRATED"
	SessionLoginEvent    SessionEventType = "SESSION_LOGIN"
	SessionClearedEvent  SessionEventType = "SESSION_CLEARED"
)

// SessionEvent is emitted after every session state change.
// Sequence increases with each state change; observers drop events older
// than the last one they applied.
type SessionEvent struct {
	ID        string           `json:"id"`
	Type      SessionEventType `json:"type"`
	Sequence  uint64           `json:"sequence"`
	Snapshot  SessionSnapshot  `json:"snapshot"`
	Timestamp time.Time        `json:"timestamp"`
	Persisted bool             `json:"persisted"`
	ErrorMsg  string           `json:"error_msg,omitempty"`
}

// SessionObserver reacts to session events
type SessionObserver interface {
	OnSessionEvent(ctx context.Context, event *SessionEvent)
}

// SessionObserverFunc adapts a function to SessionObserver
type SessionObserverFunc func(ctx context.Context, event *SessionEvent)

// OnSessionEvent implements SessionObserver
func (f SessionObserverFunc) OnSessionEvent(ctx context.Context, event *SessionEvent) {
	f(ctx, event)
}

// NewSessionEvent creates a new session event with common fields populated
func NewSessionEvent(eventType SessionEventType, seq uint64, snap SessionSnapshot) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Sequence:  seq,
		Snapshot:  snap,
		Timestamp: time.Now().UTC(),
		Persisted: true,
	}
}

// WithPersistError marks the event as not persisted
func (e *SessionEvent) WithPersistError(err error) *SessionEvent {
	if err == nil {
		return e
	}
	e.Persisted = false
	e.ErrorMsg = err.Error()
	return e
}
