package validator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// validatorImpl 校验器实现
type validatorImpl struct {
	validator   *validator.Validate
	uni         *ut.UniversalTranslator
	translators map[string]ut.Translator
	mutex       sync.RWMutex
	defaultLang string
}

// Validate 全局校验器实例，错误字段名取 json 标签
var Validate = New(WithJSONFieldName())

// New 创建新的校验器实例，内置英文与中文翻译
func New(opts ...ValidationOption) Validator {
	enLocale := en.New()
	v := &validatorImpl{
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		uni:         ut.New(enLocale, enLocale, zh.New()),
		translators: make(map[string]ut.Translator, 2),
		defaultLang: "en",
	}

	for _, opt := range opts {
		opt(v)
	}

	if trans, found := v.uni.GetTranslator("en"); found {
		v.translators["en"] = trans
		_ = en_translations.RegisterDefaultTranslations(v.validator, trans)
	}
	if trans, found := v.uni.GetTranslator("zh"); found {
		v.translators["zh"] = trans
		_ = zh_translations.RegisterDefaultTranslations(v.validator, trans)
	}

	return v
}

// Struct 校验结构体
func (v *validatorImpl) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

// StructCtx 带上下文校验结构体
func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}

	if err := v.validator.StructCtx(ctx, s); err != nil {
		return v.translateError(err)
	}
	return nil
}

// RegisterRule 注册自定义校验规则，未提供消息的语言使用 "{0} is invalid"
func (v *validatorImpl) RegisterRule(rule Rule) error {
	if rule.Tag == "" || rule.Func == nil {
		return errors.New("validation rule requires a tag and a func")
	}
	if err := v.validator.RegisterValidation(rule.Tag, rule.Func); err != nil {
		return fmt.Errorf("register rule %s: %w", rule.Tag, err)
	}

	v.mutex.RLock()
	defer v.mutex.RUnlock()
	for lang, trans := range v.translators {
		text, ok := rule.Messages[lang]
		if !ok {
			text = "{0} is invalid"
		}
		err := v.validator.RegisterTranslation(rule.Tag, trans,
			func(tr ut.Translator) error {
				return tr.Add(rule.Tag, text, true)
			},
			func(tr ut.Translator, fe validator.FieldError) string {
				msg, err := tr.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
		if err != nil {
			return fmt.Errorf("register %s translation for %s: %w", lang, rule.Tag, err)
		}
	}
	return nil
}

// GetValidator 获取底层的validator实例
func (v *validatorImpl) GetValidator() *validator.Validate {
	return v.validator
}

// translateError 将 validator.ValidationErrors 转换为带翻译消息的错误
func (v *validatorImpl) translateError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	v.mutex.RLock()
	trans, exists := v.translators[v.defaultLang]
	v.mutex.RUnlock()
	if !exists {
		return err
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldError := &fieldErrorImpl{
			fieldError:  fe,
			message:     fe.Translate(trans),
			translators: v.translators,
		}
		fieldErrors = append(fieldErrors, fieldError)
		messages = append(messages, fieldError.message)
	}

	return &validationErrorsImpl{
		fieldErrors: fieldErrors,
		message:     strings.Join(messages, "; "),
	}
}

// jsonFieldName 取 json 标签名，"-" 表示忽略
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
