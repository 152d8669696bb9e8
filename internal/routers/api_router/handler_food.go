package api_router

import (
	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dto"
	pkgapp "github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// FoodOrderHandler 拼单 API 路由处理器
type FoodOrderHandler struct {
	*Handler
}

// NewFoodOrderHandler 创建 FoodOrderHandler 实例
func NewFoodOrderHandler(a *app.App) *FoodOrderHandler {
	return &FoodOrderHandler{Handler: NewHandler(a)}
}

// Create 发起拼单
// @Router /api/food [post]
func (h *FoodOrderHandler) Create(c *gin.Context) {
	params := &dto.FoodOrderCreateRequest{}
	if !h.bind(c, "FoodOrderHandler.Create", params) {
		return
	}

	order, err := h.App.FoodOrderService.Create(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		h.fail(c, "FoodOrderHandler.Create", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(order))
}

// Search 按餐厅、菜系、地点搜索拼单
// @Router /api/food/search [get]
func (h *FoodOrderHandler) Search(c *gin.Context) {
	params := &dto.FoodOrderSearchRequest{}
	if !h.bind(c, "FoodOrderHandler.Search", params) {
		return
	}

	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}
	list, total, err := h.App.FoodOrderService.Search(c.Request.Context(), pkgapp.GetUID(c), params, pager)
	if err != nil {
		h.fail(c, "FoodOrderHandler.Search", err)
		return
	}

	pkgapp.NewResponse(c).ToResponseList(code.Success, list, total)
}

// Mine 我发起和参与的拼单
// @Router /api/food/mine [get]
func (h *FoodOrderHandler) Mine(c *gin.Context) {
	mine, err := h.App.FoodOrderService.Mine(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		h.fail(c, "FoodOrderHandler.Mine", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(mine))
}

// Get 拼单详情与费用分摊
// @Router /api/food/{id} [get]
func (h *FoodOrderHandler) Get(c *gin.Context) {
	id, ok := h.poolID(c, "FoodOrderHandler.Get")
	if !ok {
		return
	}

	order, err := h.App.FoodOrderService.Get(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		h.fail(c, "FoodOrderHandler.Get", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(order))
}

// Join 加入拼单
// @Router /api/food/{id}/join [post]
func (h *FoodOrderHandler) Join(c *gin.Context) {
	id, ok := h.poolID(c, "FoodOrderHandler.Join")
	if !ok {
		return
	}

	order, err := h.App.FoodOrderService.Join(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		h.fail(c, "FoodOrderHandler.Join", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessJoin.WithData(order))
}

// Leave 退出拼单
// @Router /api/food/{id}/leave [post]
func (h *FoodOrderHandler) Leave(c *gin.Context) {
	id, ok := h.poolID(c, "FoodOrderHandler.Leave")
	if !ok {
		return
	}

	order, err := h.App.FoodOrderService.Leave(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		h.fail(c, "FoodOrderHandler.Leave", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessLeave.WithData(order))
}

// Delete 删除拼单
// @Router /api/food/{id} [delete]
func (h *FoodOrderHandler) Delete(c *gin.Context) {
	id, ok := h.poolID(c, "FoodOrderHandler.Delete")
	if !ok {
		return
	}

	if err := h.App.FoodOrderService.Delete(c.Request.Context(), pkgapp.GetUID(c), id); err != nil {
		h.fail(c, "FoodOrderHandler.Delete", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}
