// Package router wires the Gin engine with routes and middlewares.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricetrack/internal/server/handlers"
	"pricetrack/internal/server/ws"
)

// New wires the Gin engine with required routes and middlewares.
func New(prices *handlers.PriceHandler, dashboard *handlers.DashboardHandler, syncCtl *handlers.SyncHandler, hub *ws.Hub, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/prices", prices.Create)
	r.GET("/prices", prices.List)
	r.GET("/dashboard", dashboard.Get)
	r.GET("/sync/status", syncCtl.Status)
	r.POST("/sync/drain", syncCtl.TriggerDrain)
	r.GET("/ws", func(c *gin.Context) {
		hub.Serve(c.Writer, c.Request)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
