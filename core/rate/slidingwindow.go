package rate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/core/util/id"
)

// 有序集合保存窗口内每次请求的毫秒时间戳, 先清理过期成员再计数
const slidingWindowLua = `
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`

var slidingWindowScript = redis.NewScript(slidingWindowLua)

// SlidingWindowLimiter 基于 Redis 的滑动窗口限流, 多实例共享计数
type SlidingWindowLimiter struct {
	client redis.UniversalClient
	prefix string
	window time.Duration
	limit  int
	now    func() time.Time
}

// NewSlidingWindowLimiter 创建限流器, 键为 prefix + key
func NewSlidingWindowLimiter(client redis.UniversalClient, prefix string, window time.Duration, limit int) (*SlidingWindowLimiter, error) {
	if err := validate(window, limit); err != nil {
		return nil, err
	}
	return &SlidingWindowLimiter{
		client: client,
		prefix: prefix,
		window: window,
		limit:  limit,
		now:    time.Now,
	}, nil
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	result, err := slidingWindowScript.Run(ctx, l.client, []string{l.prefix + key},
		l.window.Milliseconds(), l.limit, l.now().UnixMilli(), id.Generate(),
	).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
