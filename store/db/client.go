package db

import (
	"context"
	"database/sql"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/webpush/log"
)

// Client 数据库客户端
type Client struct {
	config  DriverConfig
	db      *gorm.DB
	sqlDB   *sql.DB
	options *clientOptions
	logger  *log.Logger
}

// New 创建新的数据库客户端并检查连通性
func New(ctx context.Context, cfg DriverConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	c := &Client{
		config:  cfg,
		options: options,
		logger:  options.logger,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, options.connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Debug().Str("driver", cfg.Driver().String()).Msg("database client created")
	return c, nil
}

func (c *Client) connect() error {
	dialector, err := c.dialector()
	if err != nil {
		return err
	}

	db, err := gorm.Open(dialector, c.gormConfig())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	pool := c.config.Pool()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	for _, plugin := range c.options.plugins {
		if err := db.Use(plugin); err != nil {
			_ = sqlDB.Close()
			return err
		}
	}

	c.db = db
	c.sqlDB = sqlDB
	return nil
}

func (c *Client) dialector() (gorm.Dialector, error) {
	dsn := c.config.DSN()
	switch c.config.Driver() {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

func (c *Client) gormConfig() *gorm.Config {
	if c.options.gormConfig != nil {
		return c.options.gormConfig
	}

	lc := logger.Config{
		LogLevel:                  logger.LogLevel(c.config.LogLevel()),
		IgnoreRecordNotFoundError: true,
	}
	if c.options.slowQueryThresh > 0 {
		lc.SlowThreshold = c.options.slowQueryThresh
	}
	return &gorm.Config{Logger: logger.New(gormLogWriter{c.logger}, lc)}
}

// DB 获取 GORM 数据库实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Ping 测试数据库连接
func (c *Client) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return ErrNotInitialized
	}
	return c.sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接
func (c *Client) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// Stats 获取连接池统计信息
func (c *Client) Stats() sql.DBStats {
	if c.sqlDB == nil {
		return sql.DBStats{}
	}
	return c.sqlDB.Stats()
}

// gormLogWriter 把 GORM 日志写入 log.Logger
type gormLogWriter struct {
	logger *log.Logger
}

func (w gormLogWriter) Printf(format string, args ...any) {
	w.logger.Info().Msgf(format, args...)
}
