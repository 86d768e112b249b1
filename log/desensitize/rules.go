package desensitize

import (
	"fmt"
	"regexp"
	"sync/atomic"
)

// Rule 脱敏规则接口
type Rule interface {
	// Name 返回规则名称
	Name() string
	// Enabled 返回规则是否启用
	Enabled() bool
	// SetEnabled 设置规则启用状态
	SetEnabled(enabled bool)
	// Process 对字符串进行脱敏处理
	Process(s string) string
}

// toggle 规则启用状态
type toggle struct {
	disabled atomic.Bool
}

func (t *toggle) Enabled() bool {
	return !t.disabled.Load()
}

func (t *toggle) SetEnabled(enabled bool) {
	t.disabled.Store(!enabled)
}

// ContentRule 基于内容匹配的脱敏规则
type ContentRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建基于内容匹配的脱敏规则，replacement 支持 $1 形式的分组引用
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	return &ContentRule{name: name, pattern: regex, replacement: replacement}, nil
}

// MustNewContentRule 创建规则，如果失败则 panic（用于内置规则）
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *ContentRule) Name() string {
	return r.name
}

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 基于 JSON 字段名匹配的脱敏规则，只替换字段值
type FieldRule struct {
	toggle
	name        string
	valuePattern *regexp.Regexp
	replacement string
	jsonPattern *regexp.Regexp
}

// NewFieldRule 创建基于字段名匹配的脱敏规则
func NewFieldRule(name, fieldName, pattern, replacement string) (*FieldRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if fieldName == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	valuePattern, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid field pattern '%s': %w", pattern, err)
	}

	// 分组：1 字段名与冒号，2 字段值（不含转义引号）
	jsonPattern := regexp.MustCompile(fmt.Sprintf(`("%s"\s*:\s*")((?:[^"\\]|\\.)*)"`, regexp.QuoteMeta(fieldName)))

	return &FieldRule{
		name:        name,
		valuePattern: valuePattern,
		replacement: replacement,
		jsonPattern: jsonPattern,
	}, nil
}

// MustNewFieldRule 创建规则，如果失败则 panic
func MustNewFieldRule(name, fieldName, pattern, replacement string) *FieldRule {
	rule, err := NewFieldRule(name, fieldName, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *FieldRule) Name() string {
	return r.name
}

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}

	return r.jsonPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := r.jsonPattern.FindStringSubmatch(match)
		return sub[1] + r.valuePattern.ReplaceAllString(sub[2], r.replacement) + `"`
	})
}
