package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/dairyshell/domain"
)

type PolicyHandlers struct{ policy domain.PolicyService }

func NewPolicyHandlers(policy domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policy: policy}
}

// PolicyRequest names one screen policy; Action defaults to view
type PolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Screen string `json:"screen" binding:"required"`
	Action string `json:"action"`
}

func (r PolicyRequest) action() string {
	if r.Action == "" {
		return domain.ActionView
	}
	return r.Action
}

// List returns the screen policies as (role, screen, action) rules
func (h *PolicyHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.policy.GetPolicies())
}

// Check reports whether role may view screen
func (h *PolicyHandlers) Check(c *gin.Context) {
	role, screen := c.Query("role"), c.Query("screen")
	if role == "" || screen == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role and screen are required"})
		return
	}
	ok, err := h.policy.CheckPermission(role, screen, domain.ActionView)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"allowed": ok}})
}

// Add grants role access to a screen
func (h *PolicyHandlers) Add(c *gin.Context) {
	var r PolicyRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.policy.AddPolicy(r.Role, r.Screen, r.action()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove revokes a screen policy; the navigator then refuses the screen
func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r PolicyRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.policy.RemovePolicy(r.Role, r.Screen, r.action()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
