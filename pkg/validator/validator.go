// Package validator wraps go-playground/validator with translated messages
// Package validator 封装 go-playground/validator 并提供翻译后的错误消息
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/haierkeys/note-rpc-service/pkg/schema"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator validates typed records after the schema pass
// CustomValidator 在结构校验之后对类型化记录做规则校验
type CustomValidator struct {
	once     sync.Once
	validate *validatorV10.Validate
	uni      *ut.UniversalTranslator
	initErr  error
}

// NewCustomValidator 创建验证器
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validatorV10.New()
		v.validate.SetTagName("binding")

		// Use json tag names in messages
		// 错误消息中使用 json 字段名
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		v.uni = ut.New(en.New(), en.New(), zh.New())
		enTran, _ := v.uni.GetTranslator("en")
		zhTran, _ := v.uni.GetTranslator("zh")

		if err := en_translations.RegisterDefaultTranslations(v.validate, enTran); err != nil {
			v.initErr = err
			return
		}
		if err := zh_translations.RegisterDefaultTranslations(v.validate, zhTran); err != nil {
			v.initErr = err
		}
	})
}

// Engine 返回底层 validator 实例
func (v *CustomValidator) Engine() *validatorV10.Validate {
	v.lazyinit()
	return v.validate
}

// Translator 返回 UniversalTranslator
func (v *CustomValidator) Translator() *ut.UniversalTranslator {
	v.lazyinit()
	return v.uni
}

// ValidateStruct validates obj and converts failures into *schema.ValidationError
// using translator locale (en / zh)
// ValidateStruct 校验 obj，并按 locale（en / zh）将错误转换为 *schema.ValidationError
func (v *CustomValidator) ValidateStruct(obj any, locale string) error {
	v.lazyinit()
	if v.initErr != nil {
		return v.initErr
	}

	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	errs, ok := err.(validatorV10.ValidationErrors)
	if !ok {
		return err
	}

	trans, found := v.uni.GetTranslator(locale)
	if !found {
		trans, _ = v.uni.GetTranslator("en")
	}

	verr := &schema.ValidationError{}
	for _, fe := range errs {
		verr.Issues = append(verr.Issues, schema.Issue{
			Field:   fe.Field(),
			Message: fe.Translate(trans),
		})
	}
	return verr
}
