package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/metrics"
)

// Metrics ghi số request và độ trễ theo route template (không theo URL thật).
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
