// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dto"
	"github.com/haierkeys/campus-share-service/internal/middleware"
	pkgapp "github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"
	apperrors "github.com/haierkeys/campus-share-service/pkg/errors"
	"github.com/haierkeys/campus-share-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind 绑定并校验参数，失败时直接写出响应
func (h *Handler) bind(c *gin.Context, method string, params interface{}) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Debug(method+".BindAndValid errs",
			zap.String(logger.FieldTraceID, middleware.GetTraceIDFromGin(c)),
			zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return false
	}
	return true
}

// poolID 读取路径中的资源 ID
func (h *Handler) poolID(c *gin.Context, method string) (int64, bool) {
	params := &dto.PoolIDRequest{}
	if err := c.ShouldBindUri(params); err != nil {
		h.App.Logger().Debug(method+".BindUri errs", zap.Error(err))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails("id is not valid"))
		return 0, false
	}
	return params.ID, true
}

// fail 记录错误并输出统一错误响应
func (h *Handler) fail(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, err)
	apperrors.ErrorResponse(c, err)
}

// logError 记录错误日志，包含 Trace ID
// 业务拒绝只记 Debug，基础设施错误记 Error
func (h *Handler) logError(ctx context.Context, method string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	}
	if apperrors.CodeOf(err, code.ErrorServerInternal).StatusCode() < 500 {
		h.App.Logger().Debug(method, fields...)
		return
	}
	h.App.Logger().Error(method, fields...)
}
