package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 拼接所有错误消息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 以字段为键返回错误消息
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid 绑定请求参数并执行校验，校验信息按请求语言翻译
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err == nil {
		return true, nil
	}

	verrs, ok := err.(val.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
		return false, errs
	}

	trans, _ := c.Value("trans").(ut.Translator)
	for _, fe := range verrs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: fe.Field(), Message: msg})
	}
	return false, errs
}
