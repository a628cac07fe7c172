package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/pkg/outbox"
)

type AdminHandler struct {
	statsRepo *repository.StatsRepository
	userRepo  *repository.UserRepository
	replay    *outbox.ReplayService
	logger    *zap.Logger
}

func NewAdminHandler(
	statsRepo *repository.StatsRepository,
	userRepo *repository.UserRepository,
	replay *outbox.ReplayService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		statsRepo: statsRepo,
		userRepo:  userRepo,
		replay:    replay,
		logger:    logger,
	}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsRepo.PlatformStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load platform stats", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load stats")
		return
	}
	respondOK(c, stats)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respondOK(c, users)
}

// ReplayEvent handles POST /api/admin/outbox/:id/replay
func (h *AdminHandler) ReplayEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.replay.ReplayEvent(c.Request.Context(), id); err != nil {
		h.logger.Error("Event replay failed", zap.Int64("event_id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "replay failed")
		return
	}
	respondOK(c, gin.H{"event_id": id, "status": "replayed"})
}

// ReplayFailed handles POST /api/admin/outbox/replay-failed
func (h *AdminHandler) ReplayFailed(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	count, err := h.replay.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed event replay aborted", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "replay failed")
		return
	}
	respondOK(c, gin.H{"replayed": count})
}
