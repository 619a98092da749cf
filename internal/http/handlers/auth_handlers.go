package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/dairyshell/domain"
)

// AuthHandlers exposes the session and the sign-in flows
type AuthHandlers struct {
	authSvc domain.AuthService
	session domain.SessionService
	tokens  domain.TokenInspector
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, session domain.SessionService, tokens domain.TokenInspector) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		session: session,
		tokens:  tokens,
	}
}

// LoginRequest represents login request.
// Identifier is an email, username or phone number.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// VerifyEmailRequest represents email verification request
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Session returns the current session snapshot
func (h *AuthHandlers) Session(c *gin.Context) {
	snap := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"loading":       snap.Loading,
			"authenticated": snap.Authenticated(),
			"identity":      snap.Identity.Kind,
			"user":          snap.User,
		},
	})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.SignIn(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user":     user,
			"identity": domain.IdentityOf(user).Kind,
		},
	})
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req domain.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"message": msg,
		},
	})
}

// VerifyEmail handles the emailed verification code
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.authSvc.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": msg,
		},
	})
}

// Logout ends the session. Logging out without a session succeeds.
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.authSvc.SignOut(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}

// Token describes the bearer token of the current session
func (h *AuthHandlers) Token(c *gin.Context) {
	info := h.tokens.Inspect(h.session.Snapshot().Token)
	c.JSON(http.StatusOK, gin.H{"data": info})
}
