package notifications

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
)

// Toast levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// DefaultHistory is the number of toasts kept when no size is given
const DefaultHistory = 50

// ToastNotifier implements domain.NotificationService.
// Toasts are written to the log and kept in a bounded history, newest last.
type ToastNotifier struct {
	log   *logrus.Entry
	limit int
	now   func() time.Time

	mu      sync.Mutex
	history []domain.Notification
}

// NewToastNotifier creates a notifier keeping at most limit toasts
func NewToastNotifier(limit int, log logrus.FieldLogger) *ToastNotifier {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &ToastNotifier{
		log:   logging.Component(log, "toast"),
		limit: limit,
		now:   time.Now,
	}
}

// Success implements domain.NotificationService
func (n *ToastNotifier) Success(title, detail string) {
	n.push(LevelSuccess, title, detail)
	n.log.WithField("detail", detail).Info(title)
}

// Error implements domain.NotificationService
func (n *ToastNotifier) Error(title, detail string) {
	n.push(LevelError, title, detail)
	n.log.WithField("detail", detail).Warn(title)
}

// Recent implements domain.NotificationService
func (n *ToastNotifier) Recent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]domain.Notification, len(n.history))
	copy(out, n.history)
	return out
}

func (n *ToastNotifier) push(level, title, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.history = append(n.history, domain.Notification{
		Level:     level,
		Title:     title,
		Detail:    detail,
		CreatedAt: n.now().UTC(),
	})
	if over := len(n.history) - n.limit; over > 0 {
		n.history = append(n.history[:0:0], n.history[over:]...)
	}
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*ToastNotifier)(nil)
