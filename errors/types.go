package errors

import "net/http"

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, format, args...)
}

// Gone marks a resource that existed and was removed, such as an expired push subscription.
func Gone(format string, args ...any) *Error {
	return New(http.StatusGone, format, args...)
}

func UnprocessableEntity(format string, args ...any) *Error {
	return New(http.StatusUnprocessableEntity, format, args...)
}

func TooManyRequests(format string, args ...any) *Error {
	return New(http.StatusTooManyRequests, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

// BadGateway marks a failure reported by, or talking to, an upstream service.
func BadGateway(format string, args ...any) *Error {
	return New(http.StatusBadGateway, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(http.StatusServiceUnavailable, format, args...)
}
