package validator

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
)

// InitBinding 替换 gin 的默认校验器，注册自定义规则与中英文翻译
// 字段名取 json 标签，返回的翻译器供 Lang 中间件按请求语言选择
func InitBinding() (*ut.UniversalTranslator, error) {
	v := NewCustomValidator()
	binding.Validator = v

	validate := v.Engine().(*validator.Validate)
	validate.RegisterTagNameFunc(jsonFieldName)
	Register(validate)

	uni := ut.New(en.New(), en.New(), zh.New())
	enTrans, _ := uni.GetTranslator("en")
	zhTrans, _ := uni.GetTranslator("zh")

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	if err := zhTranslations.RegisterDefaultTranslations(validate, zhTrans); err != nil {
		return nil, err
	}
	return uni, nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
