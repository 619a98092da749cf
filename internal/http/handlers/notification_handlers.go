package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/dairyshell/domain"
)

type NotificationHandlers struct{ notifier domain.NotificationService }

func NewNotificationHandlers(notifier domain.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notifier: notifier}
}

// List returns recent toasts, oldest first
func (h *NotificationHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.notifier.Recent()})
}
