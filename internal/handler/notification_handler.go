package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/pkg/requestid"
)

// snapshotLimit caps the initial notification fetch.
const snapshotLimit = 20

type NotificationHandler struct {
	repo   *repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationHandler(repo *repository.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{repo: repo, logger: logger}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetInt("user_id")

	items, err := h.repo.ListRecent(c.Request.Context(), userID, snapshotLimit)
	if err != nil {
		h.logger.Error("Failed to list notifications",
			zap.Int("user_id", userID),
			zap.String("request_id", requestid.FromContext(c.Request.Context())),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "failed to fetch notifications")
		return
	}

	if items == nil {
		items = []model.Notification{}
	}
	respondOK(c, items)
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.repo.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		h.logger.Error("Failed to mark notification read",
			zap.Int("notification_id", id),
			zap.Int("user_id", userID),
			zap.String("request_id", requestid.FromContext(c.Request.Context())),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "failed to update notification")
		return
	}

	respondOK(c, gin.H{"id": id, "is_read": true})
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := h.repo.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		h.logger.Error("Failed to mark all notifications read",
			zap.Int("user_id", userID),
			zap.String("request_id", requestid.FromContext(c.Request.Context())),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "failed to update notifications")
		return
	}

	respondOK(c, gin.H{"is_read": true})
}
