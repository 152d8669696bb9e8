package app

import (
	"github.com/haierkeys/campus-share-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// Page size bounds for list endpoints // 列表接口的分页大小范围
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NewPager builds the pager echoed back in list responses
// NewPager 根据请求参数构造列表响应中的分页信息
func NewPager(c *gin.Context, totalRows int) *Pager {
	return &Pager{
		Page:      GetPage(c),
		PageSize:  GetPageSize(c),
		TotalRows: totalRows,
	}
}

// formInt reads key from the query string first, then the form body
func formInt(c *gin.Context, key string) int {
	if s, exist := c.GetQuery(key); exist {
		return convert.StrTo(s).MustInt()
	}
	return convert.StrTo(c.PostForm(key)).MustInt()
}

// GetPage returns the 1-based page number // 当前页码，从 1 开始
func GetPage(c *gin.Context) int {
	if page := formInt(c, "page"); page > 0 {
		return page
	}
	return 1
}

// GetPageSize returns the page size clamped to [1, MaxPageSize] // 每页数量，限制在 MaxPageSize 以内
func GetPageSize(c *gin.Context) int {
	size := formInt(c, "pageSize")
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// GetPageOffset converts a page number into a row offset // 页码转换为偏移量
func GetPageOffset(page, pageSize int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * pageSize
}
