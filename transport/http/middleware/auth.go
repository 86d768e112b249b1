package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/webpush/core/auth/jwt"
)

// TokenParser validates a bearer token.
type TokenParser interface {
	Parse(token string) (*jwt.Claims, error)
}

// AuthConfig 认证中间件配置
type AuthConfig struct {
	Parser TokenParser
	// SkipPaths 不需要认证的路径前缀
	SkipPaths []string
}

// Auth 校验 Bearer token, 并把 owner 写入请求上下文
func Auth(parser TokenParser, skipPaths ...string) gin.HandlerFunc {
	return AuthWithConfig(AuthConfig{Parser: parser, SkipPaths: skipPaths})
}

func AuthWithConfig(config AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skippedPathPrefixes(c, config.SkipPaths...) {
			c.Next()
			return
		}

		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			abort(c, ErrorUnauthorized)
			return
		}

		claims, err := config.Parser.Parse(token)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("reject token")
			abort(c, ErrorUnauthorized)
			return
		}

		withValue(c, ownerKey, claims.Owner())
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
