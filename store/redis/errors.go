package redis

import (
	"errors"
)

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("redis: invalid configuration")

	// ErrEmptyAddrs 地址列表为空
	ErrEmptyAddrs = errors.New("redis: addrs cannot be empty")

	// ErrInvalidTimeout 超时配置无效
	ErrInvalidTimeout = errors.New("redis: invalid timeout value")
)
