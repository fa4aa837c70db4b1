package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/domain"
	"github.com/gundriai/merovote-app/internal/metrics"
)

// Feed serves the poll snapshots the dashboard renders.
type Feed interface {
	Feed(ctx context.Context, category domain.PollCategory) (*domain.FeedSnapshot, error)
	Poll(ctx context.Context, pollID string) (*domain.Poll, error)
	Stats(ctx context.Context) (*domain.PollStats, error)
}

// Admin performs the moderation calls against the remote API.
type Admin interface {
	TogglePollVisibility(ctx context.Context, pollID string) error
	DeletePoll(ctx context.Context, pollID string) error
}

type Handler struct {
	feed   Feed
	admin  Admin
	logger *zap.Logger
}

func NewHandler(feed Feed, admin Admin, logger *zap.Logger) *Handler {
	return &Handler{
		feed:   feed,
		admin:  admin,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(metrics.MetricsMiddleware())

	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/stats", h.getStats)
		dashboard.GET("/polls", h.getPolls)
		dashboard.GET("/polls/:id", h.getPoll)
		dashboard.POST("/polls/:id/toggle-visibility", h.toggleVisibility)
		dashboard.DELETE("/polls/:id", h.deletePoll)
	}

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.feed.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get poll stats", zap.Error(err))
		h.writeError(c, err, "Failed to get poll stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  stats,
	})
}

func (h *Handler) getPolls(c *gin.Context) {
	category := domain.PollCategory{
		ID:    c.DefaultQuery("category", domain.CategoryAll),
		Label: c.Query("label"),
	}

	snapshot, err := h.feed.Feed(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("failed to get polls",
			zap.Error(err),
			zap.String("category", category.ID),
		)
		h.writeError(c, err, "Failed to get polls")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"polls":  snapshot.Polls,
		"totals": gin.H{
			"polls":    snapshot.TotalPolls,
			"votes":    snapshot.TotalVotes,
			"comments": snapshot.TotalComments,
		},
	})
}

func (h *Handler) getPoll(c *gin.Context) {
	pollID := c.Param("id")

	poll, err := h.feed.Poll(c.Request.Context(), pollID)
	if err != nil {
		h.logger.Error("failed to get poll",
			zap.Error(err),
			zap.String("poll_id", pollID),
		)
		h.writeError(c, err, "Failed to get poll")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"poll":   poll,
	})
}

func (h *Handler) toggleVisibility(c *gin.Context) {
	pollID := c.Param("id")

	if err := h.admin.TogglePollVisibility(c.Request.Context(), pollID); err != nil {
		h.logger.Error("failed to toggle poll visibility",
			zap.Error(err),
			zap.String("poll_id", pollID),
		)
		h.writeError(c, err, "Failed to toggle poll visibility")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Poll visibility toggled",
	})
}

func (h *Handler) deletePoll(c *gin.Context) {
	pollID := c.Param("id")

	if err := h.admin.DeletePoll(c.Request.Context(), pollID); err != nil {
		h.logger.Error("failed to delete poll",
			zap.Error(err),
			zap.String("poll_id", pollID),
		)
		h.writeError(c, err, "Failed to delete poll")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Poll deleted",
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps domain errors onto HTTP statuses. Errors the remote API
// reported keep their meaning; everything else is a bad gateway because the
// dashboard only proxies remote state.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Authentication required",
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Poll not found",
		})
	case errors.Is(err, domain.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": "Upstream API unavailable",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": fallback,
		})
	}
}
