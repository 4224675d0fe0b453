package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/notify"
	"github.com/miniats/miniats/internal/sessions"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Notifier *notify.Notifier
	Log      *zap.Logger
}

func NewNotificationHandler(notifier *notify.Notifier, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Notifier: notifier, Log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := sessions.CurrentUser(c)
	notifications, err := h.Notifier.List(user.ID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	unread, err := h.Notifier.UnreadCount(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	unread, err := h.Notifier.UnreadCount(sessions.CurrentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.Notifier.MarkRead(sessions.CurrentUser(c).ID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.Notifier.MarkAllRead(sessions.CurrentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream is GET /app/notifications/stream: a long-lived SSE connection
// bridging the user's push channel. One subscription per connected client,
// closed on disconnect.
func (h *NotificationHandler) Stream(c *gin.Context) {
	user := sessions.CurrentUser(c)
	sub := h.Notifier.Subscribe(c.Request.Context(), user.ID)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	messages := sub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("notification", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
