package db

import (
	"fmt"
	"strings"
	"time"
)

// Driver 数据库驱动类型
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// String 返回驱动名称
func (d Driver) String() string {
	return string(d)
}

// LogLevel 与 gorm logger.LogLevel 数值一致
type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel 解析日志级别字符串，未知值视为 silent
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	default:
		return LogLevelSilent
	}
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `json:"maxIdleConns" mapstructure:"max_idle_conns" default:"10"`
	MaxOpenConns    int           `json:"maxOpenConns" mapstructure:"max_open_conns" default:"100"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" mapstructure:"conn_max_lifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" mapstructure:"conn_max_idle_time" default:"10m"`
}

// DriverConfig 驱动配置接口
type DriverConfig interface {
	Driver() Driver
	DSN() string
	Pool() *PoolConfig
	// Init 应用默认值
	Init() error
	LogLevel() LogLevel
}

// Config 按 Driver 选择对应的驱动配置，供配置文件使用
type Config struct {
	Driver   Driver          `json:"driver" mapstructure:"driver" default:"sqlite" validate:"oneof=sqlite postgres mysql"`
	SQLite   *SQLiteConfig   `json:"sqlite" mapstructure:"sqlite" default:"{}"`
	Postgres *PostgresConfig `json:"postgres" mapstructure:"postgres" default:"{}"`
	MySQL    *MySQLConfig    `json:"mysql" mapstructure:"mysql" default:"{}"`
}

// DriverConfig 返回当前驱动的配置
func (c *Config) DriverConfig() (DriverConfig, error) {
	// 先判空再赋给接口，nil 指针装进接口后不等于 nil
	missing := fmt.Errorf("%w: %s section is missing", ErrInvalidConfig, c.Driver)
	switch c.Driver {
	case DriverSQLite:
		if c.SQLite == nil {
			return nil, missing
		}
		return c.SQLite, nil
	case DriverPostgres:
		if c.Postgres == nil {
			return nil, missing
		}
		return c.Postgres, nil
	case DriverMySQL:
		if c.MySQL == nil {
			return nil, missing
		}
		return c.MySQL, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}
