package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(kiosk *KioskHandler, sessions *SessionHandler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	api := r.Group("/api")
	{
		api.GET("/health", kiosk.Health)

		api.GET("/assets", kiosk.ListAssets)
		api.GET("/assets/:id", kiosk.GetAsset)
		api.GET("/payment-request", kiosk.GetPaymentRequest)

		api.GET("/sessions/ws", sessions.ServeWS)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
