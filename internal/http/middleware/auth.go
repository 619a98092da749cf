package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/dairyshell/domain"
)

// Context keys set by SessionMW
const (
	ContextUserID   = "user_id"
	ContextIdentity = "identity"
)

// SessionMW guards routes that need a logged-in session
type SessionMW struct {
	session domain.SessionService
}

// NewSessionMW creates new session middleware wrapper
func NewSessionMW(session domain.SessionService) *SessionMW {
	return &SessionMW{session: session}
}

// RequireSession aborts with 401 unless a user is logged in, and 503 while hydrating
func (mw *SessionMW) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := mw.session.Snapshot()
		if snap.Loading {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrNavigationPending.Error()})
			return
		}
		if !snap.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrNoSession.Error()})
			return
		}

		c.Set(ContextUserID, snap.User.ID)
		c.Set(ContextIdentity, string(snap.Identity.Kind))
		c.Next()
	}
}
