package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

const (
	// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
	DefaultTraceIDHeader = "X-Trace-ID"
	// TraceIDKey Context 中存储 Trace ID 的键
	TraceIDKey = "trace_id"
)

type traceIDCtxKey struct{}

// TraceMiddlewareWithConfig 创建请求追踪中间件
// 从请求头获取或生成 Trace ID，注入 gin.Context 与 request.Context，并写回响应头
// 同时开启 opentracing 请求 span，数据库 span 挂在其下
func TraceMiddlewareWithConfig(enabled bool, header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		traceID := c.GetHeader(header)
		if traceID == "" {
			traceID = generateTraceID()
		}

		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		span.SetTag(TraceIDKey, traceID)
		defer span.Finish()

		c.Set(TraceIDKey, traceID)
		c.Request = c.Request.WithContext(WithTraceID(ctx, traceID))
		c.Header(header, traceID)

		c.Next()

		span.SetTag("http.status_code", c.Writer.Status())
	}
}

// WithTraceID 将 Trace ID 写入 context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, traceID)
}

// generateTraceID 生成唯一的 Trace ID
func generateTraceID() string {
	return uuid.NewString()
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, exists := c.Get(TraceIDKey); exists {
		if traceID, ok := id.(string); ok {
			return traceID
		}
	}
	return ""
}
