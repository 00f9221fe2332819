package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/response"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	requester := middleware.CurrentProfile(c)

	notifications, err := h.notifications.List(ctx, requester, utils.StringToInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.notifications.Count(ctx, requester)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"notifications": notifications,
		"total":         total,
	})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	if id == 0 {
		response.NotFound(c, "not found")
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), middleware.CurrentProfile(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
