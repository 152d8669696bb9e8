package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CustomValidator 实现 gin 的 binding.StructValidator，标签名沿用 binding
type CustomValidator struct {
	Once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.Elem().Kind() != reflect.Struct {
			return v.ValidateStruct(value.Elem().Interface())
		}
		v.lazyinit()
		return v.Validate.Struct(obj)
	case reflect.Struct:
		v.lazyinit()
		return v.Validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.Once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
	})
}

// RegisterCustom 注册项目自定义的类型与规则
func RegisterCustom() {
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	Register(validate)
}

// Register 在指定的 validate 上注册自定义类型与规则
//
// decimal.Decimal 以 float64 参与比较，金额字段可直接使用 gte/gt 等规则
func Register(validate *validator.Validate) {
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	_ = validate.RegisterValidation("notblank", notBlank)
}

func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := d.Float64()
		return f
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		f, _ := d.Decimal.Float64()
		return f
	}
	return nil
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return !field.IsZero()
	}
	return strings.TrimSpace(field.String()) != ""
}
