package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/webpush/log"
	"github.com/kochabx/webpush/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrClosePanic     = errors.New("close function panicked")
)

// Application 管理服务器, 后台任务和关闭函数的生命周期
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal
	servers         []transport.Server
	runners         []Runner
	closeFuncs      []CloseFunc
	logger          *log.Logger
	mu              sync.RWMutex
	started         bool
}

// Runner 后台任务, 在 ctx 取消后返回
type Runner struct {
	Name string
	Fn   func(ctx context.Context) error
}

// CloseFunc 具有超时的关闭函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

type Option func(*Application)

// WithContext 设置应用的根上下文
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

// WithShutdownTimeout 设置服务器关闭的超时时间
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 设置关闭函数的默认超时时间
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

// WithSignals 设置用于优雅关闭的信号
func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = slices.Clone(signals)
		}
	}
}

// WithLogger 设置日志记录器, 默认 log.G
func WithLogger(logger *log.Logger) Option {
	return func(app *Application) {
		if logger != nil {
			app.logger = logger
		}
	}
}

// WithServers 向应用添加服务器
func WithServers(servers ...transport.Server) Option {
	return func(app *Application) {
		for _, server := range servers {
			if server != nil {
				app.servers = append(app.servers, server)
			}
		}
	}
}

// WithRunner 添加后台任务, 如报告订阅
func WithRunner(name string, fn func(ctx context.Context) error) Option {
	return func(app *Application) {
		if fn != nil {
			app.runners = append(app.runners, Runner{Name: name, Fn: fn})
		}
	}
}

// WithClose 添加关闭函数, 按注册的逆序依次执行
func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		if err := app.addClose(name, fn, timeout); err != nil {
			app.logger.Warn().Str("name", name).Err(err).Msg("close function ignored")
		}
	}
}

// New 创建应用实例
func New(options ...Option) *Application {
	app := &Application{
		shutdownTimeout: 30 * time.Second,
		closeTimeout:    30 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT},
		logger:          log.G,
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// RegisterClose 在运行时添加关闭函数
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.addClose(name, fn, timeout)
}

func (app *Application) addClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}
	if timeout <= 0 {
		timeout = app.closeTimeout
	}
	app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
	return nil
}

// Start 启动所有服务器和后台任务, 阻塞直到收到信号, 上下文取消或任一服务退出
// 返回前按注册的逆序执行关闭函数
func (app *Application) Start() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := slices.Clone(app.servers)
	runners := slices.Clone(app.runners)
	signals := slices.Clone(app.signals)
	app.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	eg, egCtx := errgroup.WithContext(app.ctx)

	for _, server := range servers {
		eg.Go(func() error {
			if err := server.Run(); err != nil {
				return err
			}
			// 服务器提前退出时通知其他组件
			app.cancel()
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})
	}

	for _, runner := range runners {
		eg.Go(func() error {
			err := runner.Fn(egCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("runner %s: %w", runner.Name, err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			app.logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
		case <-egCtx.Done():
		}
		return nil
	})

	err := eg.Wait()
	app.runCloseTasks()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 优雅地停止应用
func (app *Application) Stop() {
	app.cancel()
}

// runCloseTasks 按注册的逆序执行关闭函数, 后注册的组件依赖先注册的组件
func (app *Application) runCloseTasks() {
	app.mu.RLock()
	closeFuncs := slices.Clone(app.closeFuncs)
	app.mu.RUnlock()

	for _, close := range slices.Backward(closeFuncs) {
		_ = app.runCloseTask(close)
	}
}

// runCloseTask 执行单个带超时的关闭函数
func (app *Application) runCloseTask(close CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), close.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Error().Interface("panic", r).Str("close", close.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- close.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			app.logger.Error().Err(err).Str("close", close.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		app.logger.Warn().Str("close", close.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

// Info 返回应用状态信息
func (app *Application) Info() ApplicationInfo {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return ApplicationInfo{
		Started:     app.started,
		ServerCount: len(app.servers),
		RunnerCount: len(app.runners),
		CloseCount:  len(app.closeFuncs),
	}
}

// ApplicationInfo 应用状态信息
type ApplicationInfo struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"server_count"`
	RunnerCount int  `json:"runner_count"`
	CloseCount  int  `json:"close_count"`
}
