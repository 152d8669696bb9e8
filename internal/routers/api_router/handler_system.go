package api_router

import (
	"context"
	"time"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dto"
	pkgapp "github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// SystemHandler 健康检查与版本信息处理器
type SystemHandler struct {
	*Handler
}

// NewSystemHandler 创建 SystemHandler 实例
func NewSystemHandler(a *app.App) *SystemHandler {
	return &SystemHandler{Handler: NewHandler(a)}
}

// Health 健康检查，包括数据库连接
// @Router /api/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	health := dto.HealthDTO{
		Status:   "ok",
		Database: "connected",
		Uptime:   h.App.Uptime().Round(time.Second).String(),
	}

	if h.App.IsShuttingDown() {
		health.Status = "shutting_down"
		pkgapp.NewResponse(c).ToResponse(code.ErrorServerShuttingDown.WithData(health))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.App.Ping(ctx); err != nil {
		h.logError(ctx, "SystemHandler.Health", err)
		health.Status = "degraded"
		health.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorDBQuery.WithData(health))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(health))
}

// Version 服务版本信息
// @Router /api/version [get]
func (h *SystemHandler) Version(c *gin.Context) {
	v := h.App.Version()
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(dto.VersionDTO{
		Name:      app.Name,
		Version:   v.Version,
		GitTag:    v.GitTag,
		BuildTime: v.BuildTime,
	}))
}
