package code

import (
	"fmt"
	"net/http"
)

// Code result code carried through service and transport layers
// Code 贯穿服务层与传输层的结果码
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
	// HTTP 状态码，0 表示沿用 200
	httpStatus int
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers an error code, panics on duplicates
// NewError 注册错误码，重复时 panic
func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, Lang: l}
}

// NewSuss registers a success code, panics on duplicates
// NewSuss 注册成功码，重复时 panic
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本，附加数据和详情不会污染全局对象
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		status:     e.status,
		Lang:       e.Lang,
		details:    []string{},
		httpStatus: e.httpStatus,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// Is lets errors.Is match clones of the same registered code
// Is 使 errors.Is 能够匹配同一错误码的副本
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code && t.status == e.status
}

// WithData 返回附带数据的副本
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.details = e.details
	c.haveDetails = e.haveDetails
	c.haveData = true
	c.data = data
	return c
}

// WithDetails 返回附带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.data = e.data
	c.haveData = e.haveData
	c.haveDetails = true
	c.details = append(c.details, details...)
	return c
}

// WithHTTPStatus 设置 HTTP 状态码
func (e *Code) WithHTTPStatus(status int) *Code {
	e.httpStatus = status
	return e
}

func (e *Code) StatusCode() int {
	if e.httpStatus != 0 {
		return e.httpStatus
	}
	return http.StatusOK
}
