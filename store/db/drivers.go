package db

import (
	"strconv"
	"strings"

	"github.com/kochabx/webpush/core/tag"
)

// SQLiteConfig SQLite 数据库配置
type SQLiteConfig struct {
	FilePath    string `json:"filePath" mapstructure:"file_path" default:"./webpush.db"`
	JournalMode string `json:"journalMode" mapstructure:"journal_mode" default:"WAL"`
	CacheSize   int    `json:"cacheSize" mapstructure:"cache_size" default:"-2000"`
	BusyTimeout int    `json:"busyTimeout" mapstructure:"busy_timeout" default:"5000"`
	SyncMode    string `json:"syncMode" mapstructure:"sync_mode" default:"NORMAL"`

	PoolConfig `json:"pool" mapstructure:"pool"`

	Level string `json:"level" mapstructure:"level" default:"silent"`
}

func (c *SQLiteConfig) Driver() Driver     { return DriverSQLite }
func (c *SQLiteConfig) Init() error        { return tag.ApplyDefaults(c) }
func (c *SQLiteConfig) Pool() *PoolConfig  { return &c.PoolConfig }
func (c *SQLiteConfig) LogLevel() LogLevel { return ParseLogLevel(c.Level) }

// DSN 生成 go-sqlite3 连接字符串
func (c *SQLiteConfig) DSN() string {
	var b strings.Builder
	b.Grow(128)
	b.WriteString("file:")
	b.WriteString(c.FilePath)
	b.WriteString("?_journal_mode=")
	b.WriteString(c.JournalMode)
	b.WriteString("&_cache_size=")
	b.WriteString(strconv.Itoa(c.CacheSize))
	b.WriteString("&_busy_timeout=")
	b.WriteString(strconv.Itoa(c.BusyTimeout))
	b.WriteString("&_synchronous=")
	b.WriteString(c.SyncMode)
	return b.String()
}

// PostgresConfig PostgreSQL 数据库配置
type PostgresConfig struct {
	Host           string `json:"host" mapstructure:"host" default:"localhost"`
	Port           int    `json:"port" mapstructure:"port" default:"5432"`
	User           string `json:"user" mapstructure:"user" default:"postgres"`
	Password       string `json:"password" mapstructure:"password"`
	Database       string `json:"database" mapstructure:"database" default:"webpush"`
	SSLMode        string `json:"sslmode" mapstructure:"sslmode" default:"disable"`
	TimeZone       string `json:"timezone" mapstructure:"timezone" default:"UTC"`
	ConnectTimeout int    `json:"connectTimeout" mapstructure:"connect_timeout" default:"10"`

	PoolConfig `json:"pool" mapstructure:"pool"`

	Level string `json:"level" mapstructure:"level" default:"silent"`
}

func (c *PostgresConfig) Driver() Driver     { return DriverPostgres }
func (c *PostgresConfig) Init() error        { return tag.ApplyDefaults(c) }
func (c *PostgresConfig) Pool() *PoolConfig  { return &c.PoolConfig }
func (c *PostgresConfig) LogLevel() LogLevel { return ParseLogLevel(c.Level) }

// DSN 生成 key=value 形式的连接字符串
func (c *PostgresConfig) DSN() string {
	var b strings.Builder
	b.Grow(128)
	b.WriteString("host=")
	b.WriteString(c.Host)
	b.WriteString(" port=")
	b.WriteString(strconv.Itoa(c.Port))
	b.WriteString(" user=")
	b.WriteString(c.User)
	b.WriteString(" password=")
	b.WriteString(c.Password)
	b.WriteString(" dbname=")
	b.WriteString(c.Database)
	b.WriteString(" sslmode=")
	b.WriteString(c.SSLMode)
	b.WriteString(" TimeZone=")
	b.WriteString(c.TimeZone)
	b.WriteString(" connect_timeout=")
	b.WriteString(strconv.Itoa(c.ConnectTimeout))
	return b.String()
}

// MySQLConfig MySQL 数据库配置
type MySQLConfig struct {
	Host      string `json:"host" mapstructure:"host" default:"localhost"`
	Port      int    `json:"port" mapstructure:"port" default:"3306"`
	User      string `json:"user" mapstructure:"user" default:"root"`
	Password  string `json:"password" mapstructure:"password"`
	Database  string `json:"database" mapstructure:"database" default:"webpush"`
	Charset   string `json:"charset" mapstructure:"charset" default:"utf8mb4"`
	ParseTime bool   `json:"parseTime" mapstructure:"parse_time" default:"true"`
	Loc       string `json:"loc" mapstructure:"loc" default:"UTC"`

	PoolConfig `json:"pool" mapstructure:"pool"`

	Level string `json:"level" mapstructure:"level" default:"silent"`
}

func (c *MySQLConfig) Driver() Driver     { return DriverMySQL }
func (c *MySQLConfig) Init() error        { return tag.ApplyDefaults(c) }
func (c *MySQLConfig) Pool() *PoolConfig  { return &c.PoolConfig }
func (c *MySQLConfig) LogLevel() LogLevel { return ParseLogLevel(c.Level) }

// DSN 生成 go-sql-driver 连接字符串
func (c *MySQLConfig) DSN() string {
	var b strings.Builder
	b.Grow(128)
	b.WriteString(c.User)
	b.WriteByte(':')
	b.WriteString(c.Password)
	b.WriteString("@tcp(")
	b.WriteString(c.Host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Port))
	b.WriteString(")/")
	b.WriteString(c.Database)
	b.WriteString("?charset=")
	b.WriteString(c.Charset)
	b.WriteString("&parseTime=")
	b.WriteString(strconv.FormatBool(c.ParseTime))
	b.WriteString("&loc=")
	b.WriteString(c.Loc)
	return b.String()
}
