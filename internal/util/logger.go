package util

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func InitLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// RequestLogger logs every HTTP request with its latency.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		)
	}
}
