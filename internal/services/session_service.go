package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
	"github.com/you/dairyshell/internal/infrastructure/metrics"
)

// Hydration outcomes reported to metrics
const (
	hydrationRestored   = "restored"
	hydrationEmpty      = "empty"
	hydrationDiscarded  = "discarded"
	hydrationFailed     = "failed"
	hydrationSuperseded = "superseded"
)

// SessionConfig holds session store settings
type SessionConfig struct {
	// StorageTimeout bounds each storage call; zero means no bound.
	StorageTimeout time.Duration
}

type subscription struct {
	id       uint64
	observer domain.SessionObserver
}

// SessionServiceImpl implements domain.SessionService
type SessionServiceImpl struct {
	store  domain.KeyValueStore
	config SessionConfig
	log    *logrus.Entry

	// persistMu orders state changes with their storage writes so the
	// stored pair always matches the last Login or Logout.
	persistMu sync.Mutex

	mu         sync.RWMutex
	user       *domain.User
	token      string
	loading    bool
	hydrating  bool
	generation uint64
	sequence   uint64

	obsMu     sync.Mutex
	observers []subscription
	nextObsID uint64
}

// NewSessionService creates a session store backed by store.
// The session starts empty and loading until Hydrate runs.
func NewSessionService(store domain.KeyValueStore, config SessionConfig, log logrus.FieldLogger) *SessionServiceImpl {
	return &SessionServiceImpl{
		store:   store,
		config:  config,
		log:     logging.Component(log, "session"),
		loading: true,
	}
}

// Hydrate implements domain.SessionService
func (s *SessionServiceImpl) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.hydrating || !s.loading {
		s.mu.Unlock()
		return domain.ErrAlreadyHydrated
	}
	s.hydrating = true
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()
	user, token, outcome, discard := s.readPersisted(ctx)

	s.persistMu.Lock()
	s.mu.Lock()
	superseded := s.generation != gen
	if superseded {
		// login or logout ran meanwhile; the explicit action wins
		outcome = hydrationSuperseded
	} else {
		s.user = user
		s.token = token
	}
	s.loading = false
	event := s.nextEventLocked(domain.SessionHydratedEvent)
	s.mu.Unlock()
	if discard && !superseded {
		s.purge(ctx)
	}
	s.persistMu.Unlock()

	metrics.RecordHydration(outcome, time.Since(start))
	s.log.WithFields(logrus.Fields{
		"outcome":  outcome,
		"identity": event.Snapshot.Identity.Kind,
		"duration": time.Since(start).String(),
	}).Info("Session hydrated")

	s.emit(ctx, event)
	return nil
}

// readPersisted loads the stored pair. Any failure yields an empty session.
// discard reports a partial or malformed pair the caller should purge.
func (s *SessionServiceImpl) readPersisted(ctx context.Context) (user *domain.User, token, outcome string, discard bool) {
	rawUser, userErr := s.get(ctx, domain.StorageKeyUser)
	if userErr != nil && !errors.Is(userErr, domain.ErrKeyNotFound) {
		s.storageFailure("read", userErr)
		return nil, "", hydrationFailed, false
	}

	token, tokenErr := s.get(ctx, domain.StorageKeyToken)
	if tokenErr != nil && !errors.Is(tokenErr, domain.ErrKeyNotFound) {
		s.storageFailure("read", tokenErr)
		return nil, "", hydrationFailed, false
	}

	userMissing := userErr != nil
	tokenMissing := tokenErr != nil || token == ""
	if userMissing && tokenMissing {
		return nil, "", hydrationEmpty, false
	}
	if userMissing || tokenMissing {
		s.log.Warn("Discarding orphaned session key")
		return nil, "", hydrationDiscarded, true
	}

	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user == nil {
		s.log.WithError(err).Warn("Discarding malformed stored user")
		return nil, "", hydrationDiscarded, true
	}
	return user, token, hydrationRestored, false
}

// Login implements domain.SessionService
func (s *SessionServiceImpl) Login(ctx context.Context, user *domain.User, token string) error {
	if user == nil {
		return domain.ErrUserRequired
	}
	if token == "" {
		return domain.ErrTokenRequired
	}

	stored := user.Clone()
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.persistMu.Lock()
	s.mu.Lock()
	s.user = stored
	s.token = token
	s.generation++
	event := s.nextEventLocked(domain.SessionLoginEvent)
	s.mu.Unlock()

	if err := s.set(ctx, map[string]string{
		domain.StorageKeyUser:  string(payload),
		domain.StorageKeyToken: token,
	}); err != nil {
		// the in-memory session stays authoritative for this process
		s.storageFailure("write", err)
		event.WithPersistError(err)
	}
	s.persistMu.Unlock()

	s.log.WithFields(logrus.Fields{
		"user_id":  stored.ID,
		"identity": event.Snapshot.Identity.Kind,
	}).Info("Session started")

	s.emit(ctx, event)
	return nil
}

// Logout implements domain.SessionService
func (s *SessionServiceImpl) Logout(ctx context.Context) {
	s.persistMu.Lock()
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.generation++
	event := s.nextEventLocked(domain.SessionClearedEvent)
	s.mu.Unlock()

	if err := s.del(ctx, domain.StorageKeyUser, domain.StorageKeyToken); err != nil {
		s.storageFailure("delete", err)
		event.WithPersistError(err)
	}
	s.persistMu.Unlock()

	s.log.Info("Session cleared")
	s.emit(ctx, event)
}

// Snapshot implements domain.SessionService
func (s *SessionServiceImpl) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Token implements domain.TokenSource
func (s *SessionServiceImpl) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe implements domain.SessionService
func (s *SessionServiceImpl) Subscribe(observer domain.SessionObserver) func() {
	s.obsMu.Lock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, subscription{id: id, observer: observer})
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *SessionServiceImpl) snapshotLocked() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		User:     s.user.Clone(),
		Token:    s.token,
		Loading:  s.loading,
		Identity: domain.IdentityOf(s.user),
	}
}

func (s *SessionServiceImpl) nextEventLocked(eventType domain.SessionEventType) *domain.SessionEvent {
	s.sequence++
	return domain.NewSessionEvent(eventType, s.sequence, s.snapshotLocked())
}

// emit notifies observers in subscription order without holding any lock
func (s *SessionServiceImpl) emit(ctx context.Context, event *domain.SessionEvent) {
	metrics.RecordSessionEvent(string(event.Type))

	s.obsMu.Lock()
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, sub := range observers {
		sub.observer.OnSessionEvent(ctx, event)
	}
}

func (s *SessionServiceImpl) purge(ctx context.Context) {
	if err := s.del(ctx, domain.StorageKeyUser, domain.StorageKeyToken); err != nil {
		s.storageFailure("delete", err)
	}
}

func (s *SessionServiceImpl) storageFailure(op string, err error) {
	metrics.RecordStorageFailure(op)
	s.log.WithError(err).WithField("op", op).Warn("Session storage failure ignored")
}

func (s *SessionServiceImpl) get(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Get(ctx, key)
}

func (s *SessionServiceImpl) set(ctx context.Context, entries map[string]string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Set(ctx, entries)
}

func (s *SessionServiceImpl) del(ctx context.Context, keys ...string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Delete(ctx, keys...)
}

func (s *SessionServiceImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.StorageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.StorageTimeout)
}

// Compile-time interface compliance verification
var _ domain.SessionService = (*SessionServiceImpl)(nil)
