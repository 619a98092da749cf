package navigation

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
)

// DeadEndHandler is called when a session resolves to no navigable graph
type DeadEndHandler func(ctx context.Context, snapshot domain.SessionSnapshot)

// ObserverOption configures a SessionObserver
type ObserverOption func(*SessionObserver)

// WithDeadEndHandler sets the handler for identities with no graph
func WithDeadEndHandler(h DeadEndHandler) ObserverOption {
	return func(o *SessionObserver) {
		o.onDeadEnd = h
	}
}

// SessionObserver re-resolves the route on every session event and mounts it.
// It implements domain.SessionObserver.
type SessionObserver struct {
	resolver  domain.RouteResolver
	navigator *Navigator
	onDeadEnd DeadEndHandler
	log       *logrus.Entry

	mu      sync.Mutex
	lastSeq uint64
}

// NewSessionObserver creates an observer that drives navigator
func NewSessionObserver(resolver domain.RouteResolver, navigator *Navigator, log logrus.FieldLogger, opts ...ObserverOption) *SessionObserver {
	o := &SessionObserver{
		resolver:  resolver,
		navigator: navigator,
		log:       logging.Component(log, "navigation-observer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnSessionEvent implements domain.SessionObserver
func (o *SessionObserver) OnSessionEvent(ctx context.Context, event *domain.SessionEvent) {
	o.mu.Lock()
	if event.Sequence <= o.lastSeq {
		o.mu.Unlock()
		o.log.WithFields(logrus.Fields{
			"sequence": event.Sequence,
			"applied":  o.lastSeq,
		}).Debug("Dropping stale session event")
		return
	}
	o.lastSeq = event.Sequence

	route := o.resolver.Resolve(event.Snapshot)
	if route.Graph == domain.GraphNone && o.onDeadEnd != nil {
		o.mu.Unlock()
		o.log.WithField("event", event.Type).Warn("Session has no navigable graph")
		// the handler may mutate the session, which re-enters this observer
		o.onDeadEnd(ctx, event.Snapshot)
		return
	}

	o.navigator.Mount(route)
	o.mu.Unlock()
}

// Compile-time interface compliance verification
var _ domain.SessionObserver = (*SessionObserver)(nil)
