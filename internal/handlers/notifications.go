package handlers

import (
	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

// ListNotifications returns the caller's notifications; ?unread=true filters.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	list, err := h.Notifications.List(c.Request.Context(), actor, c.Query("unread") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Notifications fetched successfully", list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Notification marked as read", nil)
}
