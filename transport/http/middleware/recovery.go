package middleware

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
)

// RecoveryConfig Recovery 中间件配置
type RecoveryConfig struct {
	// StackTrace 是否记录堆栈信息
	StackTrace bool
}

// Recovery 捕获 panic 并返回 500
// 只记录方法与路径, 请求头里可能带有 token
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	cfg := RecoveryConfig{StackTrace: true}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 连接已断开, 无法再写响应
				if isBrokenPipe(err) {
					logger.Warn().
						Str("error", fmt.Sprintf("%v", err)).
						Str("path", c.Request.URL.Path).
						Msg("broken pipe")
					_ = c.Error(fmt.Errorf("%v", err))
					c.Abort()
					return
				}

				event := logger.Error().
					Str("error", fmt.Sprintf("%v", err)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", RequestID(c.Request.Context()))
				if cfg.StackTrace {
					event = event.Bytes("stack", debug.Stack())
				}
				event.Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code": http.StatusInternalServerError,
					"msg":  http.StatusText(http.StatusInternalServerError),
				})
			}
		}()
		c.Next()
	}
}

// isBrokenPipe 检查是否为断开的连接错误
func isBrokenPipe(err any) bool {
	if ne, ok := err.(*net.OpError); ok {
		if se, ok := ne.Err.(*os.SyscallError); ok {
			errStr := strings.ToLower(se.Error())
			return strings.Contains(errStr, "broken pipe") ||
				strings.Contains(errStr, "connection reset by peer")
		}
	}
	return false
}
