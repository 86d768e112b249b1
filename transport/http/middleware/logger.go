package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/webpush/core/util/id"
)

const requestIDHeader = "X-Request-Id"

// LoggerConfig 日志中间件配置
type LoggerConfig struct {
	// HeaderEnabled 是否记录请求头信息
	HeaderEnabled bool
	// HandlerEnabled 是否记录处理器名称
	HandlerEnabled bool
	// SkipPaths 跳过记录的路径列表
	SkipPaths []string
	// Filter 自定义过滤函数
	Filter func(c *gin.Context) bool
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		HeaderEnabled:  false,
		HandlerEnabled: false,
		SkipPaths:      []string{"/health", "/metrics", "/ping"},
		Filter:         nil,
	}
}

// GinLogger 创建默认的 Gin 日志中间件
func GinLogger() gin.HandlerFunc {
	return GinLoggerWithConfig(DefaultLoggerConfig())
}

// GinLoggerWithConfig 根据配置创建 Gin 日志中间件
func GinLoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 请求 id 优先沿用调用方传入的值
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = id.Generate()
		}
		withValue(c, requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		// 检查是否需要跳过记录
		if shouldSkipLogging(c, config) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		event := logger.Info().
			Int("status", c.Writer.Status()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP())

		if config.HeaderEnabled {
			// Authorization 不落日志
			header := c.Request.Header.Clone()
			header.Del("Authorization")
			event = event.Any("headers", header)
		}

		if config.HandlerEnabled {
			event = event.Str("handler", c.HandlerName())
		}

		event = event.Str("request_id", requestID)

		// 记录错误信息
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}

		event.Send()
	}
}

// shouldSkipLogging 是否应该跳过日志记录
func shouldSkipLogging(c *gin.Context, config LoggerConfig) bool {
	// 检查自定义过滤器
	if config.Filter != nil {
		return config.Filter(c)
	}

	// 检查跳过路径列表
	path := c.Request.URL.Path
	return slices.Contains(config.SkipPaths, path)
}
