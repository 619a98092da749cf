// Package navigation mounts screen graphs and keeps the screen stack.
package navigation

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
	"github.com/you/dairyshell/internal/infrastructure/metrics"
)

// Navigator holds the mounted graph and its screen stack.
// Exactly one graph is mounted at a time.
type Navigator struct {
	policy domain.PolicyService
	known  map[string]bool
	log    *logrus.Entry

	mu    sync.RWMutex
	route domain.Route
	stack []string
}

// NewNavigator creates a navigator with the hydrating route mounted
func NewNavigator(resolver domain.RouteResolver, policy domain.PolicyService, log logrus.FieldLogger) *Navigator {
	known := make(map[string]bool)
	for _, route := range resolver.Graphs() {
		for _, screen := range route.Screens {
			known[screen] = true
		}
	}

	n := &Navigator{
		policy: policy,
		known:  known,
		log:    logging.Component(log, "navigator"),
	}
	if route, ok := resolver.Graph(domain.GraphHydrating); ok {
		n.route = route
		n.stack = []string{route.Entry}
	}
	return n
}

// Mount swaps the mounted graph and resets the stack to its entry screen
func (n *Navigator) Mount(route domain.Route) {
	n.mu.Lock()
	n.route = route.Clone()
	n.stack = n.stack[:0:0]
	if route.Entry != "" {
		n.stack = append(n.stack, route.Entry)
	}
	n.mu.Unlock()

	metrics.RecordMount(string(route.Graph))
	n.log.WithFields(logrus.Fields{
		"graph": route.Graph,
		"entry": route.Entry,
	}).Info("Graph mounted")
}

// Navigate pushes screen onto the stack. Navigating to the active screen is a no-op.
func (n *Navigator) Navigate(screen string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.route.Graph == domain.GraphHydrating:
		return domain.ErrNavigationPending
	case n.route.Graph == domain.GraphNone || n.route.Graph == "":
		return domain.ErrNoGraphMounted
	case !n.known[screen]:
		return fmt.Errorf("%w: %q", domain.ErrScreenNotFound, screen)
	case !n.route.Has(screen):
		return fmt.Errorf("%w: %q in graph %s", domain.ErrScreenForbidden, screen, n.route.Graph)
	}

	allowed, err := n.policy.CheckPermission(n.route.Graph.Role(), screen, domain.ActionView)
	if err != nil {
		return fmt.Errorf("failed to check screen policy: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: %q denied by policy", domain.ErrScreenForbidden, screen)
	}

	if len(n.stack) > 0 && n.stack[len(n.stack)-1] == screen {
		return nil
	}
	n.stack = append(n.stack, screen)
	return nil
}

// Back pops the active screen; the entry screen is never popped
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// Reset returns to the entry screen of the mounted graph
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.stack) > 1 {
		n.stack = n.stack[:1]
	}
}

// Active returns the screen on top of the stack, or "" when nothing is mounted
func (n *Navigator) Active() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if len(n.stack) == 0 {
		return ""
	}
	return n.stack[len(n.stack)-1]
}

// Route returns the mounted graph
func (n *Navigator) Route() domain.Route {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.route.Clone()
}

// Stack returns the screen stack, entry first
func (n *Navigator) Stack() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.stack...)
}
