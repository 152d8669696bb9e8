package api_router

import (
	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dto"
	pkgapp "github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// RideHandler 拼车 API 路由处理器
type RideHandler struct {
	*Handler
}

// NewRideHandler 创建 RideHandler 实例
func NewRideHandler(a *app.App) *RideHandler {
	return &RideHandler{Handler: NewHandler(a)}
}

// Create 发起拼车
// @Router /api/rides [post]
func (h *RideHandler) Create(c *gin.Context) {
	params := &dto.RideCreateRequest{}
	if !h.bind(c, "RideHandler.Create", params) {
		return
	}

	ride, err := h.App.RideService.Create(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		h.fail(c, "RideHandler.Create", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(ride))
}

// Search 按目的地和日期搜索拼车
// @Router /api/rides/search [get]
func (h *RideHandler) Search(c *gin.Context) {
	params := &dto.RideSearchRequest{}
	if !h.bind(c, "RideHandler.Search", params) {
		return
	}

	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}
	list, total, err := h.App.RideService.Search(c.Request.Context(), pkgapp.GetUID(c), params, pager)
	if err != nil {
		h.fail(c, "RideHandler.Search", err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, list, total)
}

// Mine 我发起和参与的拼车
// @Router /api/rides/mine [get]
func (h *RideHandler) Mine(c *gin.Context) {
	mine, err := h.App.RideService.Mine(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		h.fail(c, "RideHandler.Mine", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(mine))
}

// Get 拼车详情与费用分摊
// @Router /api/rides/{id} [get]
func (h *RideHandler) Get(c *gin.Context) {
	id, ok := h.poolID(c, "RideHandler.Get")
	if !ok {
		return
	}

	ride, err := h.App.RideService.Get(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		h.fail(c, "RideHandler.Get", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(ride))
}

// Join 加入拼车
// @Router /api/rides/{id}/join [post]
func (h *RideHandler) Join(c *gin.Context) {
	id, ok := h.poolID(c, "RideHandler.Join")
	if !ok {
		return
	}

	ride, err := h.App.RideService.Join(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		h.fail(c, "RideHandler.Join", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessJoin.WithData(ride))
}

// Leave 退出拼车
// @Router /api/rides/{id}/leave [post]
func (h *RideHandler) Leave(c *gin.Context) {
	id, ok := h.poolID(c, "RideHandler.Leave")
	if !ok {
		return
	}

	ride, err := h.App.RideService.Leave(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		h.fail(c, "RideHandler.Leave", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessLeave.WithData(ride))
}

// Delete 删除拼车，仅发起人且无人参与时可删
// @Router /api/rides/{id} [delete]
func (h *RideHandler) Delete(c *gin.Context) {
	id, ok := h.poolID(c, "RideHandler.Delete")
	if !ok {
		return
	}

	if err := h.App.RideService.Delete(c.Request.Context(), pkgapp.GetUID(c), id); err != nil {
		h.fail(c, "RideHandler.Delete", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}
