// Package handlers provides the HTTP adapters for price submission and views.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricetrack/internal/models"
	"pricetrack/internal/remote"
	syncengine "pricetrack/internal/sync"
)

// defaultRecentLimit matches the recent-entries view size.
const defaultRecentLimit = 5

// Submitter accepts validated price entries for delivery.
type Submitter interface {
	Submit(ctx context.Context, entry models.NewPriceEntry) syncengine.SubmitStatus
}

// PriceHandler handles price entry submission and the recent-entries view.
type PriceHandler struct {
	engine  Submitter
	gateway remote.Gateway
	logger  *zap.Logger
}

// NewPriceHandler constructs the HTTP handler adapter.
func NewPriceHandler(engine Submitter, gateway remote.Gateway, logger *zap.Logger) *PriceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHandler{engine: engine, gateway: gateway, logger: logger}
}

// submitRequest is the submission payload; date and submitter are stamped
// server-side.
type submitRequest struct {
	ItemName     string  `json:"item_name"`
	Supplier     string  `json:"supplier"`
	Price        float64 `json:"price"`
	ShopkeeperID string  `json:"shopkeeper_id"`
}

// Create handles POST /prices. Whether the write is immediate or queued,
// the entry is reported as saved; queued entries sync once online.
func (h *PriceHandler) Create(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submission payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := models.NewPriceEntry{
		ItemName:     req.ItemName,
		Supplier:     req.Supplier,
		Price:        req.Price,
		Date:         time.Now().Format("2006-01-02"),
		ShopkeeperID: req.ShopkeeperID,
	}
	if entry.ShopkeeperID == "" {
		entry.ShopkeeperID = "guest"
	}

	// Validation failures never reach the sync engine.
	if err := entry.Validate(); err != nil {
		h.logger.Warn("submission rejected", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	status := h.engine.Submit(c.Request.Context(), entry)

	message := "price entry saved"
	if status == syncengine.StatusQueued {
		message = "price entry saved offline, will sync when online"
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  string(status),
		"message": message,
	})
}

// List handles GET /prices and returns the most recent confirmed entries.
func (h *PriceHandler) List(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.gateway.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed fetching entries", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
