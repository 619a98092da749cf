package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/internal/http/handlers"
	"github.com/you/dairyshell/internal/http/middleware"
	"github.com/you/dairyshell/internal/infrastructure/metrics"
)

// Handlers groups the control API handlers
type Handlers struct {
	Auth          *handlers.AuthHandlers
	Route         *handlers.RouteHandlers
	Policy        *handlers.PolicyHandlers
	Notifications *handlers.NotificationHandlers
}

func BuildRouter(h Handlers, sessionMW *middleware.SessionMW, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	session := r.Group("/session")
	session.GET("", h.Auth.Session)
	session.POST("/login", h.Auth.Login)
	session.POST("/register", h.Auth.Register)
	session.POST("/verify-email", h.Auth.VerifyEmail)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/token", sessionMW.RequireSession(), h.Auth.Token)

	route := r.Group("/route")
	route.GET("", h.Route.Get)
	route.POST("/navigate", h.Route.Navigate)
	route.POST("/back", h.Route.Back)
	route.POST("/reset", h.Route.Reset)
	route.GET("/policies", h.Policy.List)
	route.POST("/policies", h.Policy.Add)
	route.DELETE("/policies", h.Policy.Remove)
	route.GET("/policies/check", h.Policy.Check)

	r.GET("/notifications", h.Notifications.List)

	return r
}
