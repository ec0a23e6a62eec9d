package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoggerKey holds the request-scoped logrus entry in the gin context.
const LoggerKey = "logger"

func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithField("method", c.Request.Method).WithField("path", c.Request.URL.Path)
		c.Set(LoggerKey, entry)

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if id := c.GetUint(HotelIDKey); id != 0 {
			fields["hotel_id"] = id
		}
		switch {
		case status >= 500:
			entry.WithFields(fields).Error("request")
		case status >= 400:
			entry.WithFields(fields).Warn("request")
		default:
			entry.WithFields(fields).Info("request")
		}
	}
}
