package middleware

import (
	"strings"

	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserAuthTokenWithManager 用户 Token 认证中间件（使用注入的 TokenManager）
func UserAuthTokenWithManager(tm app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := extractToken(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		if err := app.SetTokenToContext(c, token, tm); err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken 按 Header -> Query 的顺序读取 Token，支持 Bearer 前缀
func extractToken(c *gin.Context) string {
	var token string

	if s := c.GetHeader("Authorization"); len(s) != 0 {
		token = s
	} else if s = c.GetHeader("Token"); len(s) != 0 {
		token = s
	} else if s, exist := c.GetQuery("authorization"); exist {
		token = s
	} else if s, exist := c.GetQuery("token"); exist {
		token = s
	}

	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
