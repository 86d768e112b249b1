package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/webpush/core/tag"
	"github.com/kochabx/webpush/log/desensitize"
	"github.com/kochabx/webpush/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	desensitizeHook *desensitize.Hook
	closer          io.Closer
}

// GetDesensitizeHook 获取脱敏钩子
func (l *Logger) GetDesensitizeHook() *desensitize.Hook {
	return l.desensitizeHook
}

// Close 关闭日志记录器，释放文件句柄
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// SetZerologGlobalLevel 设置全局日志级别
func SetZerologGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// NewWithWriter 创建输出到 w 的 Logger
// 脱敏在序列化之后、写入之前进行，因此 hook 需要先于其他选项确定
func NewWithWriter(w io.Writer, opts ...Option) *Logger {
	logger := &Logger{}
	for _, opt := range opts {
		opt(logger)
	}

	if logger.desensitizeHook != nil {
		w = desensitize.NewWriter(w, logger.desensitizeHook)
	}
	logger.Logger = zerolog.New(w).With().Timestamp().Logger()

	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// New 创建新的 Logger 实例，输出到控制台
func New(opts ...Option) *Logger {
	return NewWithWriter(writer.Console(), opts...)
}

// NewFile 创建文件输出的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := newFileWriter(c)
	if err != nil {
		return nil, err
	}

	logger := NewWithWriter(fw, opts...)
	logger.closer = fw
	return logger, nil
}

// NewMulti 创建同时输出到文件和控制台的 Logger
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := newFileWriter(c)
	if err != nil {
		return nil, err
	}

	logger := NewWithWriter(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	logger.closer = fw
	return logger, nil
}

// NewFromConfig 按配置创建 Logger
func NewFromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if *c.Desensitize {
		opts = append(opts, WithDesensitize(desensitize.NewBuiltinHook()))
	}

	switch {
	case c.File == nil && c.JSON:
		return NewWithWriter(os.Stderr, opts...), nil
	case c.File == nil:
		return New(opts...), nil
	case *c.Console:
		return NewMulti(*c.File, opts...)
	default:
		return NewFile(*c.File, opts...)
	}
}

func newFileWriter(c FileConfig) (io.WriteCloser, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	w, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}
	return w, nil
}
