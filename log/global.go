package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/webpush/log/desensitize"
)

// G 全局日志实例，默认启用内置脱敏规则
var G = New(WithDesensitize(desensitize.NewBuiltinHook()))

// SetGlobalLogger 设置全局日志记录器
func SetGlobalLogger(logger *Logger) {
	G = logger
}

// SetGlobalLevel 调整全局日志级别，配置热更新时调用
func SetGlobalLevel(level zerolog.Level) {
	G.Logger = G.Logger.Level(level)
}

// Named 返回带 component 字段的子日志记录器，共享脱敏规则
// 子记录器不持有文件句柄，关闭由父记录器负责
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		Logger:          l.With().Str("component", component).Logger(),
		desensitizeHook: l.desensitizeHook,
	}
}

// Debug 返回全局 debug 级别事件
func Debug() *zerolog.Event {
	return G.Debug()
}

// Info 返回全局 info 级别事件
func Info() *zerolog.Event {
	return G.Info()
}

// Warn 返回全局 warn 级别事件
func Warn() *zerolog.Event {
	return G.Warn()
}

// Error 返回全局 error 级别事件（带堆栈）
func Error() *zerolog.Event {
	return G.Error().Stack()
}
