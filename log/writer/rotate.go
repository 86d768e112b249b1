package writer

import (
	"fmt"
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式，配置文件中写作 time 或 size
type RotateMode string

const (
	RotateModeTime RotateMode = "time"
	RotateModeSize RotateMode = "size"
)

// 日志里有推送地址，文件不对其他用户开放
const fileMode = 0o600

// timeRotateWriter 按时间轮转的 writer
func timeRotateWriter(config RotateConfig) (io.WriteCloser, error) {
	writer, err := rotatelogs.New(
		config.fileFullPathWithFormat("%Y%m%d%H%M"),
		rotatelogs.WithLinkName(config.fileFullPath()),
		rotatelogs.WithMaxAge(time.Duration(config.TimeRotateConfig.MaxAge)*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(config.TimeRotateConfig.RotationTime)*time.Hour),
		// rotatelogs 按 0644 创建文件，每次切换后收紧
		rotatelogs.WithHandler(rotatelogs.HandlerFunc(restrict)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
	}
	return writer, nil
}

func restrict(e rotatelogs.Event) {
	if ev, ok := e.(*rotatelogs.FileRotatedEvent); ok {
		_ = os.Chmod(ev.CurrentFile(), fileMode)
	}
}

// sizeRotateWriter 按大小轮转的 writer
func sizeRotateWriter(config RotateConfig) (io.WriteCloser, error) {
	return &lumberjack.Logger{
		Filename:   config.fileFullPath(),
		MaxSize:    config.SizeRotateConfig.MaxSize,
		MaxBackups: config.SizeRotateConfig.MaxBackups,
		MaxAge:     config.SizeRotateConfig.MaxAge,
		Compress:   config.SizeRotateConfig.Compress,
	}, nil
}

