package middleware

import (
	"strconv"
	"time"

	"github.com/haierkeys/campus-share-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 记录 HTTP 请求数与耗时，route 使用注册的路由模板
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
