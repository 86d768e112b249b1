package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/webpush/errors"
)

const (
	defaultSuccessMsg = "success"
	defaultErrorMsg   = "operation failed"
)

// Response 标准 API 响应结构
type Response[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data T      `json:"data,omitempty"`
}

// GinJSON 写入成功响应, HTTP 状态码与业务码均为 200
func GinJSON(c *gin.Context, data any) {
	GinStatus(c, http.StatusOK, data)
}

// GinStatus 写入成功响应, 业务码与 HTTP 状态码一致
func GinStatus(c *gin.Context, status int, data any) {
	c.JSON(status, &Response[any]{
		Code: status,
		Msg:  defaultSuccessMsg,
		Data: data,
	})
}

// GinError 写入错误响应
// HTTP 状态码取自 errors.Error 的 code, 不是合法的 HTTP 错误码时使用 500
func GinError(c *gin.Context, err error) {
	e := errors.FromError(err)
	status := e.Code
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusInternalServerError
	}

	msg := e.Message
	if msg == "" {
		msg = defaultErrorMsg
	}
	if status >= http.StatusInternalServerError {
		// 内部错误只记录日志, 不暴露细节
		_ = c.Error(err)
		msg = http.StatusText(status)
	}

	c.AbortWithStatusJSON(status, &Response[any]{
		Code: e.Code,
		Msg:  msg,
	})
}
