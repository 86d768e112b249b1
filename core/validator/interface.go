package validator

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validator 定义校验器接口
type Validator interface {
	// Struct 校验结构体
	Struct(s any) error

	// StructCtx 带上下文校验结构体
	StructCtx(ctx context.Context, s any) error

	// RegisterRule 注册自定义校验规则及其各语言错误消息
	RegisterRule(rule Rule) error

	// GetValidator 获取底层的validator实例
	GetValidator() *validator.Validate
}

// Rule 自定义校验规则
// Messages 的键为语言，值为错误消息模板，{0} 为字段名
type Rule struct {
	Tag      string
	Func     validator.Func
	Messages map[string]string
}

// ValidationErrors 校验错误接口
type ValidationErrors interface {
	error
	// Errors 返回错误列表
	Errors() []FieldError
	// HasErrors 是否有错误
	HasErrors() bool
}

// FieldError 字段错误接口
type FieldError interface {
	// Field 字段名
	Field() string
	// Tag 校验标签
	Tag() string
	// Value 字段值
	Value() any
	// Message 错误消息
	Message() string
	// Translate 翻译错误消息
	Translate(lang string) string
}

// ValidationOption 校验器选项
type ValidationOption func(*validatorImpl)

// WithTagName 设置校验标签名
func WithTagName(tagName string) ValidationOption {
	return func(v *validatorImpl) {
		v.validator.SetTagName(tagName)
	}
}

// WithLanguage 设置默认错误消息语言
func WithLanguage(lang string) ValidationOption {
	return func(v *validatorImpl) {
		v.defaultLang = lang
	}
}

// WithJSONFieldName 错误中使用 json 标签作为字段名
func WithJSONFieldName() ValidationOption {
	return func(v *validatorImpl) {
		v.validator.RegisterTagNameFunc(jsonFieldName)
	}
}
