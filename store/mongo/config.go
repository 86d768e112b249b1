package mongo

import (
	"strconv"
	"strings"
	"time"

	"github.com/kochabx/webpush/core/tag"
)

// Config MongoDB 配置结构体
type Config struct {
	Host        string        `json:"host" mapstructure:"host" default:"localhost"`
	Port        int           `json:"port" mapstructure:"port" default:"27017"`
	User        string        `json:"user" mapstructure:"user" default:"root"`
	Password    string        `json:"password" mapstructure:"password"`
	MaxPoolSize int           `json:"maxPoolSize" mapstructure:"max_pool_size" default:"10"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`
	Database    string        `json:"database" mapstructure:"database" default:"webpush"`
	Collection  string        `json:"collection" mapstructure:"collection" default:"subscriptions"`
}

// uri 构建 MongoDB 连接字符串
func (c *Config) uri() string {
	var builder strings.Builder
	builder.Grow(128)

	builder.WriteString("mongodb://")
	if c.User != "" && c.Password != "" {
		builder.WriteString(c.User)
		builder.WriteString(":")
		builder.WriteString(c.Password)
		builder.WriteString("@")
	}

	builder.WriteString(c.Host)
	builder.WriteString(":")
	builder.WriteString(strconv.Itoa(c.Port))
	builder.WriteString("/?maxPoolSize=")
	builder.WriteString(strconv.Itoa(c.MaxPoolSize))

	return builder.String()
}

// Init 设置默认值
func (c *Config) Init() error {
	return tag.ApplyDefaults(c)
}
