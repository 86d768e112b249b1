package dispatch

import (
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/kochabx/webpush/core/push"
)

// RetryStrategy 决定失败后是否以及多久之后重试
type RetryStrategy interface {
	// NextRetry 返回第 retryCount 次重试前的延迟, ok 为 false 时放弃
	NextRetry(retryCount int) (delay time.Duration, ok bool)
}

// ExponentialBackoff 指数退避重试策略
type ExponentialBackoff struct {
	BaseDelay  time.Duration // 基础延迟
	MaxDelay   time.Duration // 最大延迟
	Multiplier float64       // 指数乘数
	Jitter     bool          // 是否添加 ±25% 随机抖动
	MaxRetries int           // 最大重试次数
}

// NewExponentialBackoff 创建指数退避策略, 乘数为 2 并带抖动
func NewExponentialBackoff(baseDelay, maxDelay time.Duration, maxRetries int) *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
		Multiplier: 2,
		Jitter:     true,
		MaxRetries: maxRetries,
	}
}

// NextRetry delay = min(baseDelay * multiplier^retryCount, maxDelay)
func (e *ExponentialBackoff) NextRetry(retryCount int) (time.Duration, bool) {
	if retryCount >= e.MaxRetries {
		return 0, false
	}
	retryCount = max(retryCount, 0)

	delay := float64(e.BaseDelay) * math.Pow(e.Multiplier, float64(retryCount))
	if e.MaxDelay > 0 && delay > float64(e.MaxDelay) {
		delay = float64(e.MaxDelay)
	}
	if e.Jitter && delay > 0 {
		delay += delay * 0.25 * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(delay, 0)), true
}

// FixedDelay 固定延迟重试策略
type FixedDelay struct {
	Delay      time.Duration
	MaxRetries int
}

// NewFixedDelay 创建固定延迟策略
func NewFixedDelay(delay time.Duration, maxRetries int) *FixedDelay {
	return &FixedDelay{Delay: delay, MaxRetries: maxRetries}
}

func (f *FixedDelay) NextRetry(retryCount int) (time.Duration, bool) {
	if retryCount >= f.MaxRetries {
		return 0, false
	}
	return f.Delay, true
}

// NoRetry 不重试策略
type NoRetry struct{}

func (NoRetry) NextRetry(int) (time.Duration, bool) {
	return 0, false
}

// retryable 仅 429、5xx 与无响应的传输错误值得重试, 过期订阅永不重试
func retryable(r *push.Report) bool {
	switch {
	case r == nil, r.Success, r.Expired:
		return false
	case r.StatusCode == 0:
		return r.Cause != nil
	case r.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return r.StatusCode >= http.StatusInternalServerError
	}
}
