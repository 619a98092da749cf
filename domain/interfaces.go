package domain

import "context"

// Persistent storage keys for the session pair
const (
	StorageKeyUser  = "@auth"
	StorageKeyToken = "token"
)

// KeyValueStore defines the durable device storage used by the session.
// Set writes all entries or none; Delete ignores missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// TokenSource yields the bearer token current at call time
type TokenSource interface {
	Token() string
}

// SessionService defines the session store
type SessionService interface {
	TokenSource
	Hydrate(ctx context.Context) error
	Login(ctx context.Context, user *User, token string) error
	Logout(ctx context.Context)
	Snapshot() SessionSnapshot
	Subscribe(observer SessionObserver) (unsubscribe func())
}

// RouteResolver maps a session snapshot to a screen graph
type RouteResolver interface {
	Resolve(snapshot SessionSnapshot) Route
	Graph(graph Graph) (Route, bool)
	Graphs() []Route
}

// PolicyService defines screen access policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}

// MarketplaceAPI defines the remote REST operations used by the core
type MarketplaceAPI interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Register(ctx context.Context, reg *Registration) (string, error)
	VerifyEmail(ctx context.Context, email, code string) (string, error)
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

// AuthService defines the sign-in and sign-up flows
type AuthService interface {
	SignIn(ctx context.Context, identifier, password string) (*User, error)
	Register(ctx context.Context, reg Registration) (string, error)
	VerifyEmail(ctx context.Context, email, code string) (string, error)
	SignOut(ctx context.Context)
}

// NotificationService defines the toast surface
type NotificationService interface {
	Success(title, detail string)
	Error(title, detail string)
	Recent() []Notification
}

// TokenInspector decodes bearer tokens for display
type TokenInspector interface {
	Inspect(token string) TokenInfo
}

// ActionView is the policy action checked before opening a screen
const ActionView = "view"
