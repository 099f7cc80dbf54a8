package middleware

import (
	"strconv"
	"time"

	"shophub/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records a request counter and latency histogram per route.
// The route template (not the raw path) is used as the handler label
// so that /orders/:id stays a single series.
func Metrics(m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(startTime).Milliseconds()))
	}
}
