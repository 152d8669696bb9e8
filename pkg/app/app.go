package app

import (
	"strings"

	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

type Pager struct {
	Page      int `json:"page"`      // Page number // 页码
	PageSize  int `json:"pageSize"`  // Page size // 每页数量
	TotalRows int `json:"totalRows"` // Total rows // 总行数
}

type ListRes struct {
	List  interface{} `json:"list"`  // Data list // 数据清单
	Pager Pager       `json:"pager"` // Pagination info // 翻页信息
}

// Res is the unified response structure: Code/Status/Msg/Data
// Res 是统一的响应结构：Code/Status/Msg/Data
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// ToResponse writes the unified Res envelope
// ToResponse 输出统一的 Res 结构
func (r *Response) ToResponse(codeObj *code.Code) {
	r.render(codeObj, codeObj.Data())
}

// ToResponseList outputs a list response using ListRes as Data
// ToResponseList 输出列表响应，使用 ListRes 作为 Data
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, totalRows int) {
	r.render(codeObj, ListRes{List: list, Pager: *NewPager(r.Ctx, totalRows)})
}

// render 写出统一响应
func (r *Response) render(codeObj *code.Code, data interface{}) {
	status := codeObj.StatusCode()
	r.Ctx.Set("status_code", status)

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    data,
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.Ctx.JSON(status, content)
}
