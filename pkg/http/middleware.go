package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/sensor-api-service/pkg/common"
)

// RequestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(common.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(common.ContextKeyRequestID, requestID)
		c.Header(common.HeaderRequestID, requestID)
		c.Next()
	}
}

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger := common.GetLoggerWith(
			common.LoggerNameRestfulServer,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryAccess),
		)
		logger.Info("Handled request",
			zap.String(common.LoggerFieldRequestID, c.GetString(common.ContextKeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// RequireSensorID only lets integer sensor ids through, anything else is a 404 like an
// unmatched route.
func RequireSensorID(c *gin.Context) {
	sensorID, err := strconv.Atoi(c.Param(contextKeySensorID))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.Set(contextKeySensorID, sensorID)
	c.Next()
}
