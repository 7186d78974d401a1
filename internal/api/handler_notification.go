package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careminder/internal/model"
	"careminder/internal/sink"
)

// NotificationStore is the slice of the repository the handlers need.
type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) (bool, error)
	ClearAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]model.Notification, error)
	CountUnread(ctx context.Context) (int, error)
}

type NotificationHandler struct {
	store  NotificationStore
	sink   sink.Sink
	logger *zap.Logger
}

func NewNotificationHandler(store NotificationStore, deliverySink sink.Sink, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		store:  store,
		sink:   deliverySink,
		logger: logger,
	}
}

// notificationView decorates a stored notification with the rendering
// metadata its kind carries.
type notificationView struct {
	model.Notification
	Icon  string `json:"icon"`
	Route string `json:"route"`
}

func toView(n model.Notification) notificationView {
	meta := n.Kind.Meta()
	return notificationView{
		Notification: n,
		Icon:         meta.Icon,
		Route:        meta.Route,
	}
}

// List returns every notification, most recent first, plus the unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	unread, err := h.store.CountUnread(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count unread notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread notifications"})
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, toView(n))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"notifications": views,
		"unread":        unread,
		"total":         len(views),
	})
}

// MarkRead marks one notification as read. Idempotent.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.store.MarkRead(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to mark notification read",
			zap.Int64("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}

	h.renderUnread(c)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	found, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete notification",
			zap.Int64("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}

	h.renderUnread(c)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Clear removes every notification.
func (h *NotificationHandler) Clear(c *gin.Context) {
	if err := h.store.ClearAll(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notifications"})
		return
	}

	h.renderUnread(c)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Seed inserts a set of demo notifications. The scanner is otherwise the
// only writer, so this is the explicit seeding path for demos and manual
// testing.
func (h *NotificationHandler) Seed(c *gin.Context) {
	seeds := []model.Notification{
		{
			Kind:     model.KindReminder,
			Title:    "Welcome",
			Message:  "Reminders are active. You will be notified about medications and appointments.",
			Priority: model.PriorityLow,
		},
		{
			Kind:     model.KindProgress,
			Title:    "Progress Check",
			Message:  "Remember to log today's progress notes.",
			Priority: model.PriorityLow,
		},
		{
			Kind:     model.KindAlert,
			Title:    "Demo Alert",
			Message:  "This is a seeded high-priority alert.",
			Priority: model.PriorityHigh,
		},
	}

	created := make([]notificationView, 0, len(seeds))
	for i := range seeds {
		if _, err := h.store.Insert(c.Request.Context(), &seeds[i]); err != nil {
			h.logger.Error("Failed to seed notification", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed notifications"})
			return
		}
		h.sink.Present(c.Request.Context(), seeds[i])
		created = append(created, toView(seeds[i]))
	}

	h.renderUnread(c)
	c.JSON(http.StatusCreated, gin.H{
		"status":        "success",
		"notifications": created,
		"total":         len(created),
	})
}

func (h *NotificationHandler) renderUnread(c *gin.Context) {
	unread, err := h.store.CountUnread(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to count unread notifications", zap.Error(err))
		return
	}
	h.sink.RenderUnread(c.Request.Context(), unread)
}
