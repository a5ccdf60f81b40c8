package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricetrack/internal/models"
	"pricetrack/internal/remote"
	"pricetrack/internal/trend"
)

// dashboardFetchLimit bounds how much history feeds the analyzer.
const dashboardFetchLimit = 100

// DashboardHandler serves supplier averages, trends, and price alerts.
type DashboardHandler struct {
	gateway  remote.Gateway
	analyzer *trend.Analyzer
	logger   *zap.Logger
}

// NewDashboardHandler constructs the dashboard adapter.
func NewDashboardHandler(gateway remote.Gateway, analyzer *trend.Analyzer, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{gateway: gateway, analyzer: analyzer, logger: logger}
}

// Get handles GET /dashboard. Only confirmed remote records feed the
// analyzer; the pending queue is invisible to the read side.
func (h *DashboardHandler) Get(c *gin.Context) {
	entries, err := h.gateway.List(c.Request.Context(), dashboardFetchLimit)
	if err != nil {
		h.logger.Error("failed fetching entries for dashboard", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote store unavailable"})
		return
	}

	// The remote read API serves newest first; the analyzer expects
	// chronological order.
	report := h.analyzer.Analyze(reverse(entries))

	c.JSON(http.StatusOK, report)
}

func reverse(entries []models.PriceEntry) []models.PriceEntry {
	out := make([]models.PriceEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
