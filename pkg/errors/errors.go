package errors

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/campus-share-service/internal/middleware"
	"github.com/haierkeys/campus-share-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、状态、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 始终为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	traceID := middleware.GetTraceIDFromGin(c)

	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.TraceID = traceID
		send(c, appErr)
		return
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		send(c, NewAppError(codeErr, nil).WithTraceID(traceID))
		return
	}

	// 未知错误统一按内部错误返回，不向客户端暴露原始信息
	send(c, NewAppError(code.ErrorServerInternal, err).WithTraceID(traceID))
}

// ErrorResponseWithCode 使用指定的 Code 对象返回错误响应
func ErrorResponseWithCode(c *gin.Context, codeErr *code.Code, cause error) {
	send(c, NewAppError(codeErr, cause).WithTraceID(middleware.GetTraceIDFromGin(c)))
}

// CodeOf 从错误链中提取 Code，找不到时返回 fallback
func CodeOf(err error, fallback *code.Code) *code.Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		var c *code.Code
		if errors.As(appErr.Cause, &c) {
			return c
		}
	}
	var c *code.Code
	if errors.As(err, &c) {
		return c
	}
	return fallback
}

// IsAppError 检查错误是否为 AppError 类型
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 从错误链中获取 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func send(c *gin.Context, e *AppError) {
	status := e.httpStatus
	if status == 0 {
		status = 200
	}
	c.Set("status_code", status)
	c.JSON(status, e)
}
