package handler

import (
	"net/http"

	"veredapos/internal/notify"

	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct{ feed *notify.Feed }

func NewNotificationsHandler(feed *notify.Feed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// List GET /v1/notifications
func (h *NotificationsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.List())
}

// Dismiss DELETE /v1/notifications/:id
func (h *NotificationsHandler) Dismiss(c *gin.Context) {
	h.feed.Dismiss(c.Param("id"))
	c.Status(http.StatusNoContent)
}
