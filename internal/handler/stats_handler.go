package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gyanveer/coaching-admin-api/internal/service"
	"github.com/gyanveer/coaching-admin-api/pkg/response"
)

// StatsHandler exposes the aggregate dashboard endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get godoc
// @Summary Aggregate enrollment and fee statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Sync godoc
// @Summary Recompute aggregate statistics now
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/sync [post]
func (h *StatsHandler) Sync(c *gin.Context) {
	stats, err := h.stats.Sync(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
