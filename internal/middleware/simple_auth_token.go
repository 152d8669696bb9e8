package middleware

import (
	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// SimpleAuthTokenWithConfig 静态 Token 认证中间件，用于私有管理端口
// authToken 为空时不做校验
func SimpleAuthTokenWithConfig(authToken string) gin.HandlerFunc {
	return func(c *gin.Context) {

		if authToken == "" {
			c.Next()
			return
		}

		if extractToken(c) != authToken {
			app.NewResponse(c).ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Next()
	}
}
