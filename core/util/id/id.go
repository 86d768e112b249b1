package id

import "github.com/google/uuid"

// Generate 生成 UUID v4
func Generate() string {
	return uuid.NewString()
}

// Short 生成 8 位短 ID, 仅用于日志关联
func Short() string {
	return uuid.NewString()[:8]
}
