package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/webpush/core/util"
	"github.com/kochabx/webpush/errors"
	"github.com/kochabx/webpush/log"
)

var (
	ErrorUnauthorized = errors.Unauthorized("unauthorized")
	ErrorForbidden    = errors.Forbidden("forbidden")
)

var logger = log.G

func SetLogger(l *log.Logger) {
	logger = l
}

type ctxKey string

const (
	ownerKey     ctxKey = "owner"
	requestIDKey ctxKey = "request_id"
)

// Owner returns the authenticated subscription owner of the request.
func Owner(ctx context.Context) (string, error) {
	return util.CtxValue[string](ctx, ownerKey)
}

// RequestID returns the id assigned by the logger middleware.
func RequestID(ctx context.Context) string {
	id, _ := util.CtxValue[string](ctx, requestIDKey)
	return id
}

func withValue(c *gin.Context, key ctxKey, value any) {
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), key, value))
}

func skippedPathPrefixes(c *gin.Context, prefixes ...string) bool {
	path := c.Request.URL.Path
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func abort(c *gin.Context, err *errors.Error) {
	c.AbortWithStatusJSON(err.Code, gin.H{"code": err.Code, "msg": err.Message})
}
