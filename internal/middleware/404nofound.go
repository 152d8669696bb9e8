package middleware

import (
	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 404 处理
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFoundAPI.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
