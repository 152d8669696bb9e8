package middleware

import (
	"strings"

	"github.com/haierkeys/campus-share-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.SplitN(s, ",", 2)[0]
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		if uni != nil {
			trans, found := uni.GetTranslator(lang)
			if !found && strings.HasPrefix(lang, "zh") {
				trans, found = uni.GetTranslator("zh")
			}
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set("trans", trans)
		}

		_ = code.SetGlobalDefaultLang(lang)

		c.Next()
	}
}
