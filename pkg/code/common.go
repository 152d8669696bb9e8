package code

import "net/http"

var (
	Failed               = NewError(0, lang{en: "Failed", zh_cn: "失败"})
	Success              = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate        = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"}).WithHTTPStatus(http.StatusCreated)
	SuccessDelete        = NewSuss(3, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessJoin          = NewSuss(4, lang{en: "Joined successfully", zh_cn: "加入成功"})
	SuccessLeave         = NewSuss(5, lang{en: "Left successfully", zh_cn: "退出成功"})
	SuccessLogout        = NewSuss(6, lang{en: "Logged out successfully", zh_cn: "退出登录成功"})
	SuccessTokenRefresh  = NewSuss(7, lang{en: "Token refreshed", zh_cn: "令牌已刷新"})
	ErrorServerInternal  = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"}).WithHTTPStatus(http.StatusInternalServerError)
	ErrorNotFoundAPI     = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"}).WithHTTPStatus(http.StatusNotFound)
	ErrorTooManyRequests = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"}).WithHTTPStatus(http.StatusTooManyRequests)
	ErrorInvalidParams   = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数错误"}).WithHTTPStatus(http.StatusBadRequest)
)

// 认证相关
var (
	ErrorNotUserAuthToken        = NewError(401, lang{en: "Authentication token is missing", zh_cn: "缺少认证令牌"}).WithHTTPStatus(http.StatusUnauthorized)
	ErrorInvalidUserAuthToken    = NewError(402, lang{en: "Authentication token is invalid or expired", zh_cn: "认证令牌无效或已过期"}).WithHTTPStatus(http.StatusUnauthorized)
	ErrorNotRefreshToken         = NewError(403, lang{en: "Refresh token is missing", zh_cn: "缺少刷新令牌"}).WithHTTPStatus(http.StatusUnauthorized)
	ErrorInvalidRefreshToken     = NewError(405, lang{en: "Refresh token is invalid or revoked", zh_cn: "刷新令牌无效或已撤销"}).WithHTTPStatus(http.StatusUnauthorized)
	ErrorTokenGenerate           = NewError(406, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"}).WithHTTPStatus(http.StatusInternalServerError)
	ErrorUserRegisterIsDisable   = NewError(410, lang{en: "Registration is disabled", zh_cn: "注册功能已关闭"}).WithHTTPStatus(http.StatusForbidden)
	ErrorUserEmailAlreadyExists  = NewError(411, lang{en: "Email is already registered", zh_cn: "邮箱已被注册"}).WithHTTPStatus(http.StatusConflict)
	ErrorUserLoginPasswordFailed = NewError(412, lang{en: "Incorrect email or password", zh_cn: "邮箱或密码错误"}).WithHTTPStatus(http.StatusUnauthorized)
	ErrorUserNotFound            = NewError(413, lang{en: "User not found", zh_cn: "用户不存在"}).WithHTTPStatus(http.StatusNotFound)
	ErrorPasswordNotValid        = NewError(414, lang{en: "Password is not valid", zh_cn: "密码不合法"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorUserRegister            = NewError(415, lang{en: "Registration failed", zh_cn: "注册失败"}).WithHTTPStatus(http.StatusInternalServerError)
)

// 基础设施相关
var (
	ErrorDBQuery  = NewError(600, lang{en: "Database query failed", zh_cn: "数据库查询失败"}).WithHTTPStatus(http.StatusInternalServerError)
	ErrorDBUpdate = NewError(601, lang{en: "Database update failed", zh_cn: "数据库更新失败"}).WithHTTPStatus(http.StatusInternalServerError)
	ErrorPoolBusy = NewError(602, lang{en: "The resource is busy, please retry", zh_cn: "资源繁忙，请重试"}).WithHTTPStatus(http.StatusServiceUnavailable)

	ErrorServerShuttingDown = NewError(603, lang{en: "Service is shutting down", zh_cn: "服务正在关闭"}).WithHTTPStatus(http.StatusServiceUnavailable)
)

// 拼车与拼单相关
var (
	ErrorRideNotFound         = NewError(700, lang{en: "Ride not found", zh_cn: "拼车不存在"}).WithHTTPStatus(http.StatusNotFound)
	ErrorFoodOrderNotFound    = NewError(701, lang{en: "Food order not found", zh_cn: "拼单不存在"}).WithHTTPStatus(http.StatusNotFound)
	ErrorPoolPastExpiry       = NewError(702, lang{en: "Expiry time must be in the future", zh_cn: "截止时间必须晚于当前时间"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolExpired          = NewError(703, lang{en: "This listing has expired", zh_cn: "该信息已过期"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolSelfJoin         = NewError(704, lang{en: "You cannot join your own listing", zh_cn: "不能加入自己发布的信息"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolAlreadyJoined    = NewError(705, lang{en: "You have already joined", zh_cn: "您已加入"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolFull             = NewError(706, lang{en: "No capacity left", zh_cn: "名额已满"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolOwnerCannotLeave = NewError(707, lang{en: "The creator cannot leave, delete it instead", zh_cn: "发起人不能退出，请直接删除"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolNotParticipant   = NewError(708, lang{en: "You are not a participant", zh_cn: "您不是参与者"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolNotOwner         = NewError(709, lang{en: "Only the creator can delete it", zh_cn: "只有发起人可以删除"}).WithHTTPStatus(http.StatusForbidden)
	ErrorPoolHasParticipants  = NewError(710, lang{en: "Cannot delete while participants have joined", zh_cn: "已有参与者加入，无法删除"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorPoolSplit            = NewError(711, lang{en: "Failed to compute the split amount", zh_cn: "计算分摊金额失败"}).WithHTTPStatus(http.StatusInternalServerError)
)
