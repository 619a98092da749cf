package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/config"
	httpx "github.com/you/dairyshell/internal/http"
	"github.com/you/dairyshell/internal/http/handlers"
	"github.com/you/dairyshell/internal/http/middleware"
	"github.com/you/dairyshell/internal/infrastructure/api"
	"github.com/you/dairyshell/internal/infrastructure/auth"
	"github.com/you/dairyshell/internal/infrastructure/database"
	"github.com/you/dairyshell/internal/infrastructure/logging"
	"github.com/you/dairyshell/internal/infrastructure/metrics"
	"github.com/you/dairyshell/internal/infrastructure/notifications"
	"github.com/you/dairyshell/internal/navigation"
	"github.com/you/dairyshell/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Log    *logrus.Logger

	// Infrastructure
	Store    domain.KeyValueStore
	API      *api.Client
	Notifier *notifications.ToastNotifier
	Tokens   domain.TokenInspector

	// Services
	Session  *services.SessionServiceImpl
	Resolver *services.RouteResolverImpl
	Policy   domain.PolicyService
	AuthSvc  domain.AuthService

	// Navigation
	Navigator *navigation.Navigator
	Observer  *navigation.SessionObserver

	Router *gin.Engine

	unsubscribe func()
}

// NewContainer opens the configured storage and wires every component.
// Storage that cannot be opened degrades to a logged-out session; only an
// unsupported driver is an error. Logs go to out; nil means stderr.
func NewContainer(ctx context.Context, cfg *config.Config, out io.Writer) (*Container, error) {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, out)

	store, err := database.OpenKeyValueStore(ctx, cfg)
	if errors.Is(err, domain.ErrUnsupportedDriver) {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	if err != nil {
		metrics.RecordStorageFailure("open")
		log.WithError(err).WithField("driver", cfg.StorageDriver).
			Error("Session storage unavailable, sessions will not persist")
		store = database.NewUnavailableStore(err)
	}

	c, err := newContainer(cfg, log, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}

func newContainer(cfg *config.Config, log *logrus.Logger, store domain.KeyValueStore) (*Container, error) {
	c := &Container{Config: cfg, Log: log, Store: store}

	c.initSession()
	if err := c.initNavigation(); err != nil {
		return nil, err
	}
	c.initServices()
	c.initRouter()

	return c, nil
}

func (c *Container) initSession() {
	c.Session = services.NewSessionService(c.Store, services.SessionConfig{
		StorageTimeout: c.Config.StorageTimeout,
	}, c.Log)

	// the client reads the token per request from the live session
	c.API = api.NewClient(api.ClientConfig{
		BaseURL: c.Config.APIBaseURL,
		Timeout: c.Config.APITimeout,
	}, c.Session, c.Log)
}

func (c *Container) initNavigation() error {
	c.Resolver = services.NewRouteResolver()

	cas, err := auth.NewCasbinService()
	if err != nil {
		return fmt.Errorf("failed to build screen policy: %w", err)
	}
	c.Policy = services.NewPolicyService(cas.E)
	if err := services.SeedScreenPolicies(c.Policy, c.Resolver); err != nil {
		return err
	}

	c.Navigator = navigation.NewNavigator(c.Resolver, c.Policy, c.Log)
	c.Observer = navigation.NewSessionObserver(c.Resolver, c.Navigator, c.Log,
		navigation.WithDeadEndHandler(func(ctx context.Context, snap domain.SessionSnapshot) {
			c.Log.WithField("identity", snap.Identity.Kind).Warn("Logging out session with no navigable graph")
			c.Session.Logout(ctx)
		}),
	)
	c.unsubscribe = c.Session.Subscribe(c.Observer)
	return nil
}

func (c *Container) initServices() {
	c.Notifier = notifications.NewToastNotifier(notifications.DefaultHistory, c.Log)
	c.AuthSvc = services.NewAuthService(c.API, c.Session, c.Notifier, c.Log)
	c.Tokens = auth.NewTokenInspector()
}

func (c *Container) initRouter() {
	gin.SetMode(c.Config.GinMode)

	c.Router = httpx.BuildRouter(httpx.Handlers{
		Auth:          handlers.NewAuthHandlers(c.AuthSvc, c.Session, c.Tokens),
		Route:         handlers.NewRouteHandlers(c.Navigator),
		Policy:        handlers.NewPolicyHandlers(c.Policy),
		Notifications: handlers.NewNotificationHandlers(c.Notifier),
	}, middleware.NewSessionMW(c.Session), c.Log)
}

// Close detaches the observer and closes storage
func (c *Container) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}
