package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/dairyshell/internal/navigation"
)

// RouteHandlers drives the navigator
type RouteHandlers struct {
	nav *navigation.Navigator
}

// NewRouteHandlers creates new route handlers
func NewRouteHandlers(nav *navigation.Navigator) *RouteHandlers {
	return &RouteHandlers{nav: nav}
}

// NavigateRequest represents a screen change
type NavigateRequest struct {
	Screen string `json:"screen" binding:"required"`
}

func (h *RouteHandlers) view() gin.H {
	route := h.nav.Route()
	return gin.H{
		"graph":   route.Graph,
		"entry":   route.Entry,
		"screens": route.Screens,
		"active":  h.nav.Active(),
		"stack":   h.nav.Stack(),
	}
}

// Get returns the mounted graph and the screen stack
func (h *RouteHandlers) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.view()})
}

// Navigate pushes a screen
func (h *RouteHandlers) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.nav.Navigate(req.Screen); err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.view()})
}

// Back pops the active screen
func (h *RouteHandlers) Back(c *gin.Context) {
	popped := h.nav.Back()
	view := h.view()
	view["popped"] = popped
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// Reset returns to the entry screen of the mounted graph
func (h *RouteHandlers) Reset(c *gin.Context) {
	h.nav.Reset()
	c.JSON(http.StatusOK, gin.H{"data": h.view()})
}
