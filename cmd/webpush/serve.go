package main

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/kochabx/webpush/app"
	"github.com/kochabx/webpush/config"
	"github.com/kochabx/webpush/core/auth/jwt"
	"github.com/kochabx/webpush/core/dispatch"
	"github.com/kochabx/webpush/core/util/desensitize"
	"github.com/kochabx/webpush/log"
	httpx "github.com/kochabx/webpush/transport/http"
	"github.com/kochabx/webpush/transport/http/handler"
	"github.com/kochabx/webpush/transport/http/metrics"
	"github.com/kochabx/webpush/transport/http/middleware"
)

// runServe runs the intake server and the scheduled dispatcher until ctx ends.
func runServe(ctx context.Context, args []string, _ io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", "config.yaml", "config file")
	addr := fs.String("addr", "", "listen address, overrides http.addr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		settings *config.Settings
		cfg      *config.Config
	)
	settings, cfg, err := loadSettings(*cfgPath, config.WithWatch(true), config.WithOnChange(func() {
		// 只有日志级别支持热更新, 其余配置需要重启
		var level string
		cfg.Read(func() { level = settings.Log.Level })
		if l, err := zerolog.ParseLevel(level); err == nil {
			log.SetGlobalLevel(l)
		}
	}))
	if err != nil {
		return err
	}
	if *addr != "" {
		settings.HTTP.Addr = *addr
	}
	if settings.HTTP.JWTSecret == "" {
		return errors.New("http.jwt_secret is required to serve")
	}

	logger, err := newLogger(settings.Log)
	if err != nil {
		return err
	}
	middleware.SetLogger(logger)

	st := newStack(settings, logger)
	server, d, err := buildServer(ctx, st)
	if err != nil {
		st.close()
		return err
	}

	opts := []app.Option{
		app.WithContext(ctx),
		app.WithLogger(logger),
		app.WithServers(server),
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, closeTimeout),
	}
	for _, c := range st.closers {
		opts = append(opts, app.WithClose(c.name, c.fn, closeTimeout))
	}
	// 最后注册, 最先关闭: 先投递完队列再断开存储
	opts = append(opts, app.WithClose("dispatcher", func(ctx context.Context) error {
		return drain(ctx, d)
	}, closeTimeout))
	for _, r := range st.runners {
		opts = append(opts, app.WithRunner(r.name, r.fn))
	}

	if err := cfg.Watch(); err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	logger.Info().
		Str("addr", settings.HTTP.Addr).
		Str("store", settings.Store.Backend).
		Str("keyStore", settings.VAPID.KeyStore).
		Str("subject", desensitize.Email(settings.VAPID.Subject)).
		Bool("reports", settings.Reports.Enabled).
		Msg("webpush serving")
	return app.New(opts...).Start()
}

// buildServer wires the stores, the dispatcher and the gin routes.
func buildServer(ctx context.Context, st *stack) (*httpx.Server, *dispatch.Dispatcher, error) {
	settings := st.settings

	id, err := st.identity(ctx)
	if err != nil {
		return nil, nil, err
	}
	st.logger.Info().
		Str("identity", id.Name()).
		Str("publicKey", desensitize.Key(id.Keys().PublicKeyString(), 8)).
		Msg("vapid identity ready")
	store, err := st.subscriptionStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	pusher, err := st.pusher(id)
	if err != nil {
		return nil, nil, err
	}
	d, err := st.dispatcher(pusher, store, metrics.Prom.Registry())
	if err != nil {
		return nil, nil, err
	}
	if spec := settings.Dispatch.Schedule; spec != "" {
		if err := d.Schedule(spec); err != nil {
			_ = d.Close()
			return nil, nil, err
		}
	}
	d.Start()

	tokens, err := jwt.New(&jwt.Config{Secret: settings.HTTP.JWTSecret})
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.GinLogger(), middleware.Cors())
	hopts := []handler.Option{handler.WithLogger(st.logger.Named("http"))}
	if limiter, err := st.limiter(); err != nil {
		_ = d.Close()
		return nil, nil, err
	} else if limiter != nil {
		hopts = append(hopts, handler.WithLimiter(limiter))
	}
	handler.NewWebPush(id, store, d, hopts...).Register(r, r.Group("", middleware.Auth(tokens)))

	server := httpx.NewServer(settings.HTTP.Addr, r,
		httpx.WithMeta(httpx.Meta{Name: "webpush"}),
		httpx.WithMetricsOptions(httpx.MetricsOption{
			Enabled:                   enabled(settings.HTTP.Metrics),
			EnabledGoCollector:        true,
			EnabledBuildInfoCollector: true,
		}),
		httpx.WithHealthOptions(httpx.HealthOption{
			Enabled: enabled(settings.HTTP.Health),
			Checks:  st.health,
		}),
	)
	return server, d, nil
}

// drain stops the schedule, delivers what is still queued and releases the pool.
func drain(ctx context.Context, d *dispatch.Dispatcher) error {
	if err := d.Stop(ctx); err != nil {
		return err
	}
	_, flushErr := d.Flush(ctx)
	return errors.Join(flushErr, d.Close())
}

func enabled(b *bool) bool {
	return b == nil || *b
}
