package api_router

import (
	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dto"
	pkgapp "github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserHandler user API router handler
// UserHandler 用户 API 路由处理器
type UserHandler struct {
	*Handler
}

// NewUserHandler creates UserHandler instance
// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(a *app.App) *UserHandler {
	return &UserHandler{Handler: NewHandler(a)}
}

// Register user registration, returns tokens on success
// Register 用户注册，成功后直接返回令牌
// @Router /api/user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	params := &dto.UserRegisterRequest{}
	if !h.bind(c, "UserHandler.Register", params) {
		return
	}

	auth, err := h.App.UserService.Register(c.Request.Context(), params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.fail(c, "UserHandler.Register", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(auth))
}

// Login user login
// Login 用户登录
// @Router /api/user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	params := &dto.UserLoginRequest{}
	if !h.bind(c, "UserHandler.Login", params) {
		return
	}

	auth, err := h.App.UserService.Login(c.Request.Context(), params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.fail(c, "UserHandler.Login", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(auth))
}

// Refresh rotates the refresh token
// Refresh 轮换刷新令牌
// @Router /api/user/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	params := &dto.UserRefreshRequest{}
	if !h.bind(c, "UserHandler.Refresh", params) {
		return
	}

	auth, err := h.App.UserService.Refresh(c.Request.Context(), params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.fail(c, "UserHandler.Refresh", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessTokenRefresh.WithData(auth))
}

// Logout revokes all refresh tokens of the current user
// Logout 撤销当前用户的全部刷新令牌
// @Router /api/user/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.App.UserService.Logout(c.Request.Context(), pkgapp.GetUID(c)); err != nil {
		h.fail(c, "UserHandler.Logout", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.SuccessLogout)
}

// Me returns the current user
// Me 获取当前用户信息
// @Router /api/user/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.App.UserService.GetInfo(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		h.fail(c, "UserHandler.Me", err)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(user))
}
