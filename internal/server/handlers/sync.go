package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Drainer exposes the queue replay controls used by the HTTP surface.
type Drainer interface {
	Drain(ctx context.Context)
	Pending() int
	Draining() bool
}

// OnlineChecker reports the current connectivity state.
type OnlineChecker interface {
	IsOnline() bool
}

// SyncHandler exposes queue status and a manual drain trigger.
type SyncHandler struct {
	engine  Drainer
	monitor OnlineChecker
	logger  *zap.Logger
}

// NewSyncHandler constructs the sync control adapter.
func NewSyncHandler(engine Drainer, monitor OnlineChecker, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{engine: engine, monitor: monitor, logger: logger}
}

// Status handles GET /sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online":   h.monitor.IsOnline(),
		"pending":  h.engine.Pending(),
		"draining": h.engine.Draining(),
	})
}

// TriggerDrain handles POST /sync/drain. The drain runs in the background;
// an already-running pass makes the trigger a no-op.
func (h *SyncHandler) TriggerDrain(c *gin.Context) {
	go h.engine.Drain(context.WithoutCancel(c.Request.Context()))

	c.JSON(http.StatusAccepted, gin.H{
		"pending": h.engine.Pending(),
	})
}
