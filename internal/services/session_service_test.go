package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/database"
	"github.com/you/dairyshell/internal/infrastructure/repositories"
	"github.com/you/dairyshell/internal/mocks"
)

func encodeUser(t *testing.T, u *domain.User) string {
	t.Helper()

	b, err := json.Marshal(u)
	require.NoError(t, err)
	return string(b)
}

func TestSessionServiceImpl_InitialState(t *testing.T) {
	svc := createSessionServiceForTest(t, nil)

	snap := svc.Snapshot()
	assert.True(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	assert.Equal(t, domain.GraphHydrating, NewRouteResolver().Resolve(snap).Graph)
}

func TestSessionServiceImpl_Hydrate(t *testing.T) {
	buyer := createBuyer(t)

	tests := []struct {
		name            string
		setupStore      func(t *testing.T, store *mocks.MockKeyValueStore)
		expectedUser    *domain.User
		expectedToken   string
		expectedPurge   bool
		expectedGraph   domain.Graph
	}{
		{
			name:          "fresh install",
			setupStore:    func(t *testing.T, store *mocks.MockKeyValueStore) {},
			expectedGraph: domain.GraphGuest,
		},
		{
			name: "stored pair is restored",
			setupStore: func(t *testing.T, store *mocks.MockKeyValueStore) {
				store.Seed(domain.StorageKeyUser, encodeUser(t, buyer))
				store.Seed(domain.StorageKeyToken, "tok-buyer")
			},
			expectedUser:  buyer,
			expectedToken: "tok-buyer",
			expectedGraph: domain.GraphBuyer,
		},
		{
			name: "user without token is discarded",
			setupStore: func(t *testing.T, store *mocks.MockKeyValueStore) {
				store.Seed(domain.StorageKeyUser, encodeUser(t, buyer))
			},
			expectedPurge: true,
			expectedGraph: domain.GraphGuest,
		},
		{
			name: "token without user is discarded",
			setupStore: func(t *testing.T, store *mocks.MockKeyValueStore) {
				store.Seed(domain.StorageKeyToken, "orphan")
			},
			expectedPurge: true,
			expectedGraph: domain.GraphGuest,
		},
		{
			name: "malformed user json",
			setupStore: func(t *testing.T, store *mocks.MockKeyValueStore) {
				store.Seed(domain.StorageKeyUser, "{not json")
				store.Seed(domain.StorageKeyToken, "tok")
			},
			expectedPurge: true,
			expectedGraph: domain.GraphGuest,
		},
		{
			name: "null user json",
			setupStore: func(t *testing.T, store *mocks.MockKeyValueStore) {
				store.Seed(domain.StorageKeyUser, "null")
				store.Seed(domain.StorageKeyToken, "tok")
			},
			expectedPurge: true,
			expectedGraph: domain.GraphGuest,
		},
		{
			name: "storage read failure fails open",
			setupStore: func(t *testing.T, store *mocks.MockKeyValueStore) {
				store.GetFunc = func(ctx context.Context, key string) (string, error) {
					return "", errors.New("disk unreadable")
				}
			},
			expectedGraph: domain.GraphGuest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockKeyValueStore()
			tt.setupStore(t, store)
			svc := createSessionServiceForTest(t, store)
			observer := &recordingObserver{}
			svc.Subscribe(observer)

			require.NoError(t, svc.Hydrate(createTestContext(t)))

			snap := svc.Snapshot()
			assert.False(t, snap.Loading)
			assert.Equal(t, tt.expectedUser, snap.User)
			assert.Equal(t, tt.expectedToken, snap.Token)
			assert.Equal(t, tt.expectedToken, svc.Token())
			assert.Equal(t, tt.expectedUser != nil, snap.Token != "", "user and token are paired")
			assert.Equal(t, tt.expectedGraph, NewRouteResolver().Resolve(snap).Graph)

			if tt.expectedPurge {
				require.Len(t, store.DeleteCalls, 1)
				assert.ElementsMatch(t, []string{domain.StorageKeyUser, domain.StorageKeyToken}, store.DeleteCalls[0])
				_, ok := store.Value(domain.StorageKeyUser)
				assert.False(t, ok)
				_, ok = store.Value(domain.StorageKeyToken)
				assert.False(t, ok)
			} else {
				assert.Empty(t, store.DeleteCalls)
			}

			assert.Equal(t, []domain.SessionEventType{domain.SessionHydratedEvent}, observer.types())
		})
	}
}

func TestSessionServiceImpl_HydrateRunsOnce(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	svc := createSessionServiceForTest(t, store)
	observer := &recordingObserver{}
	svc.Subscribe(observer)
	ctx := createTestContext(t)

	require.NoError(t, svc.Hydrate(ctx))
	assert.ErrorIs(t, svc.Hydrate(ctx), domain.ErrAlreadyHydrated)

	assert.Len(t, store.GetCalls, 2)
	assert.Len(t, observer.types(), 1)
}

func TestSessionServiceImpl_HydrateCancelledContext(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	store.GetFunc = func(ctx context.Context, key string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	svc := createSessionServiceForTest(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Hydrate(ctx))
	snap := svc.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestSessionServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name          string
		user          *domain.User
		token         string
		expectedError error
	}{
		{name: "nil user", token: "tok", expectedError: domain.ErrUserRequired},
		{name: "empty token", user: &domain.User{ID: "1", UserField: domain.UserFieldBuyer}, expectedError: domain.ErrTokenRequired},
		{name: "admin", user: &domain.User{ID: "1", Role: domain.RoleAdmin}, token: "tok123"},
		{name: "buyer", user: &domain.User{ID: "2", UserField: domain.UserFieldBuyer}, token: "tok456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockKeyValueStore()
			svc := createSessionServiceForTest(t, store)
			observer := &recordingObserver{}
			svc.Subscribe(observer)

			err := svc.Login(createTestContext(t), tt.user, tt.token)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, store.SetCalls)
				assert.Empty(t, observer.types())
				return
			}
			require.NoError(t, err)

			snap := svc.Snapshot()
			assert.Equal(t, tt.user, snap.User)
			assert.Equal(t, tt.token, snap.Token)

			require.Len(t, store.SetCalls, 1, "both keys are written in one call")
			assert.Equal(t, tt.token, store.SetCalls[0][domain.StorageKeyToken])
			var stored domain.User
			require.NoError(t, json.Unmarshal([]byte(store.SetCalls[0][domain.StorageKeyUser]), &stored))
			assert.Equal(t, *tt.user, stored)

			event := observer.last()
			require.NotNil(t, event)
			assert.Equal(t, domain.SessionLoginEvent, event.Type)
			assert.True(t, event.Persisted)
		})
	}
}

func TestSessionServiceImpl_AdminLoginScenario(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	svc := createSessionServiceForTest(t, store)
	ctx := createTestContext(t)
	require.NoError(t, svc.Hydrate(ctx))

	admin := createAdmin(t)
	require.NoError(t, svc.Login(ctx, admin, "tok123"))

	assert.Equal(t, domain.GraphAdmin, NewRouteResolver().Resolve(svc.Snapshot()).Graph)

	raw, ok := store.Value(domain.StorageKeyUser)
	require.True(t, ok)
	assert.JSONEq(t, encodeUser(t, admin), raw)
	token, ok := store.Value(domain.StorageKeyToken)
	require.True(t, ok)
	assert.Equal(t, "tok123", token)
	assert.Equal(t, "tok123", svc.Token())
}

func TestSessionServiceImpl_LoginOverwrites(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	svc := createSessionServiceForTest(t, store)
	ctx := createTestContext(t)

	require.NoError(t, svc.Login(ctx, createBuyer(t), "first"))
	require.NoError(t, svc.Login(ctx, createSeller(t), "second"))

	snap := svc.Snapshot()
	assert.Equal(t, createSeller(t), snap.User)
	assert.Equal(t, "second", snap.Token)
	token, _ := store.Value(domain.StorageKeyToken)
	assert.Equal(t, "second", token)
}

func TestSessionServiceImpl_LoginPersistFailure(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	store.SetFunc = func(ctx context.Context, entries map[string]string) error {
		return errors.New("disk full")
	}
	svc := createSessionServiceForTest(t, store)
	observer := &recordingObserver{}
	svc.Subscribe(observer)

	err := svc.Login(createTestContext(t), createBuyer(t), "tok")
	require.NoError(t, err, "persistence failures are not surfaced")

	snap := svc.Snapshot()
	assert.Equal(t, createBuyer(t), snap.User)
	assert.Equal(t, "tok", snap.Token)

	event := observer.last()
	require.NotNil(t, event)
	assert.False(t, event.Persisted)
	assert.Contains(t, event.ErrorMsg, "disk full")
}

func TestSessionServiceImpl_Logout(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	svc := createSessionServiceForTest(t, store)
	observer := &recordingObserver{}
	svc.Subscribe(observer)
	ctx := createTestContext(t)

	require.NoError(t, svc.Hydrate(ctx))
	require.NoError(t, svc.Login(ctx, createBuyer(t), "tok"))

	svc.Logout(ctx)
	first := svc.Snapshot()
	svc.Logout(ctx)
	second := svc.Snapshot()

	assert.Equal(t, first, second, "logout is idempotent")
	assert.Nil(t, second.User)
	assert.Empty(t, second.Token)
	assert.Empty(t, svc.Token())
	assert.False(t, second.Loading)
	assert.Equal(t, domain.GraphGuest, NewRouteResolver().Resolve(second).Graph)

	_, ok := store.Value(domain.StorageKeyUser)
	assert.False(t, ok)
	_, ok = store.Value(domain.StorageKeyToken)
	assert.False(t, ok)

	assert.Equal(t, []domain.SessionEventType{
		domain.SessionHydratedEvent,
		domain.SessionLoginEvent,
		domain.SessionClearedEvent,
		domain.SessionClearedEvent,
	}, observer.types())
}

func TestSessionServiceImpl_LogoutDeleteFailure(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	svc := createSessionServiceForTest(t, store)
	ctx := createTestContext(t)
	require.NoError(t, svc.Login(ctx, createBuyer(t), "tok"))

	store.DeleteFunc = func(ctx context.Context, keys ...string) error {
		return errors.New("read-only filesystem")
	}
	observer := &recordingObserver{}
	svc.Subscribe(observer)

	svc.Logout(ctx)

	snap := svc.Snapshot()
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)

	event := observer.last()
	require.NotNil(t, event)
	assert.Equal(t, domain.SessionClearedEvent, event.Type)
	assert.False(t, event.Persisted)
}

func TestSessionServiceImpl_RoundTripAcrossRestart(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "device.db")
	db, err := database.Open("sqlite", cfgPath)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := repositories.NewGormKeyValueStore(db)
	t.Cleanup(func() { store.Close() })

	ctx := createTestContext(t)
	buyer := createBuyer(t)

	first := createSessionServiceForTest(t, store)
	require.NoError(t, first.Hydrate(ctx))
	require.NoError(t, first.Login(ctx, buyer, "tok-restart"))

	// a new process sees only what was persisted
	second := createSessionServiceForTest(t, store)
	require.NoError(t, second.Hydrate(ctx))

	snap := second.Snapshot()
	assert.Equal(t, buyer, snap.User)
	assert.Equal(t, "tok-restart", snap.Token)
	assert.Equal(t, domain.GraphBuyer, NewRouteResolver().Resolve(snap).Graph)

	second.Logout(ctx)
	third := createSessionServiceForTest(t, store)
	require.NoError(t, third.Hydrate(ctx))
	assert.Nil(t, third.Snapshot().User)
}

func TestSessionServiceImpl_LoginDuringHydration(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	store.Seed(domain.StorageKeyUser, encodeUser(t, createSeller(t)))
	store.Seed(domain.StorageKeyToken, "stale")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.GetFunc = func(ctx context.Context, key string) (string, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		if v, ok := store.Value(key); ok {
			return v, nil
		}
		return "", domain.ErrKeyNotFound
	}

	svc := NewSessionService(store, SessionConfig{}, nil)
	observer := &recordingObserver{}
	svc.Subscribe(observer)
	ctx := createTestContext(t)

	done := make(chan error, 1)
	go func() { done <- svc.Hydrate(ctx) }()

	<-entered
	require.NoError(t, svc.Login(ctx, createBuyer(t), "fresh"))
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("hydrate did not finish")
	}

	snap := svc.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, createBuyer(t), snap.User)
	assert.Equal(t, "fresh", snap.Token)

	assert.Equal(t, []domain.SessionEventType{domain.SessionLoginEvent, domain.SessionHydratedEvent}, observer.types())
	assert.True(t, observer.events[0].Snapshot.Loading)
	assert.Less(t, observer.events[0].Sequence, observer.events[1].Sequence)
}

func TestSessionServiceImpl_Subscribe(t *testing.T) {
	svc := createSessionServiceForTest(t, nil)
	ctx := createTestContext(t)

	var order []string
	svc.Subscribe(domain.SessionObserverFunc(func(ctx context.Context, e *domain.SessionEvent) {
		order = append(order, "first")
	}))
	unsubscribe := svc.Subscribe(domain.SessionObserverFunc(func(ctx context.Context, e *domain.SessionEvent) {
		order = append(order, "second")
	}))
	svc.Subscribe(domain.SessionObserverFunc(func(ctx context.Context, e *domain.SessionEvent) {
		order = append(order, "third")
	}))

	svc.Logout(ctx)
	assert.Equal(t, []string{"first", "second", "third"}, order)

	order = nil
	unsubscribe()
	unsubscribe()
	svc.Logout(ctx)
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestSessionServiceImpl_ObserverMayCallBack(t *testing.T) {
	svc := createSessionServiceForTest(t, nil)
	ctx := createTestContext(t)

	svc.Subscribe(domain.SessionObserverFunc(func(ctx context.Context, e *domain.SessionEvent) {
		if e.Type == domain.SessionLoginEvent {
			_ = svc.Snapshot()
			svc.Logout(ctx)
		}
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Login(ctx, &domain.User{ID: "x", UserField: "unknown"}, "tok")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("observer callback deadlocked")
	}
	assert.Nil(t, svc.Snapshot().User)
}

func TestSessionServiceImpl_SnapshotIsACopy(t *testing.T) {
	svc := createSessionServiceForTest(t, nil)
	ctx := createTestContext(t)

	user := createBuyer(t)
	require.NoError(t, svc.Login(ctx, user, "tok"))

	user.FirstName = "changed by caller"
	snap := svc.Snapshot()
	assert.Equal(t, "Bola", snap.User.FirstName)

	snap.User.FirstName = "changed by reader"
	*snap.User.LastLoginAt = time.Time{}
	again := svc.Snapshot()
	assert.Equal(t, "Bola", again.User.FirstName)
	assert.False(t, again.User.LastLoginAt.IsZero())
}

func TestSessionServiceImpl_ConcurrentAccess(t *testing.T) {
	svc := createSessionServiceForTest(t, nil)
	ctx := createTestContext(t)
	require.NoError(t, svc.Hydrate(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = svc.Login(ctx, createBuyer(t), "tok")
		}()
		go func() {
			defer wg.Done()
			svc.Logout(ctx)
		}()
	}
	wg.Wait()

	snap := svc.Snapshot()
	assert.Equal(t, snap.User != nil, snap.Token != "", "user and token stay paired")
}

func TestSessionServiceImpl_StoredPairFollowsLastWrite(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	// slow writes widen the gap between state change and persistence
	store.SetFunc = func(ctx context.Context, entries map[string]string) error {
		time.Sleep(time.Millisecond)
		for k, v := range entries {
			store.Seed(k, v)
		}
		return nil
	}
	store.DeleteFunc = func(ctx context.Context, keys ...string) error {
		time.Sleep(time.Millisecond)
		for _, k := range keys {
			store.Seed(k, "")
		}
		return nil
	}

	svc := NewSessionService(store, SessionConfig{}, nil)
	ctx := createTestContext(t)
	require.NoError(t, svc.Hydrate(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = svc.Login(ctx, createBuyer(t), fmt.Sprintf("tok-%d", i))
		}(i)
		go func() {
			defer wg.Done()
			svc.Logout(ctx)
		}()
	}
	wg.Wait()

	snap := svc.Snapshot()
	storedToken, _ := store.Value(domain.StorageKeyToken)
	assert.Equal(t, snap.Token, storedToken)
	storedUser, _ := store.Value(domain.StorageKeyUser)
	assert.Equal(t, snap.User != nil, storedUser != "")
}

func TestSessionServiceImpl_DiscardDoesNotEraseConcurrentLogin(t *testing.T) {
	store := mocks.NewMockKeyValueStore()
	svc := NewSessionService(store, SessionConfig{}, nil)
	ctx := createTestContext(t)

	stale := encodeUser(t, createSeller(t))
	store.GetFunc = func(ctx context.Context, key string) (string, error) {
		if key == domain.StorageKeyUser {
			return stale, nil
		}
		// the token is missing, so the pair is orphaned; a login lands before the purge
		require.NoError(t, svc.Login(ctx, createBuyer(t), "fresh"))
		return "", domain.ErrKeyNotFound
	}

	require.NoError(t, svc.Hydrate(ctx))

	snap := svc.Snapshot()
	assert.Equal(t, "fresh", snap.Token)
	token, ok := store.Value(domain.StorageKeyToken)
	require.True(t, ok)
	assert.Equal(t, "fresh", token)
	_, ok = store.Value(domain.StorageKeyUser)
	assert.True(t, ok)
	assert.Empty(t, store.DeleteCalls)
}
