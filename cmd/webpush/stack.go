package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kochabx/webpush/config"
	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/core/dispatch"
	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/rate"
	"github.com/kochabx/webpush/core/tag"
	"github.com/kochabx/webpush/core/validator"
	"github.com/kochabx/webpush/log"
	"github.com/kochabx/webpush/store/db"
	"github.com/kochabx/webpush/store/etcd"
	"github.com/kochabx/webpush/store/kafka"
	"github.com/kochabx/webpush/store/mongo"
	"github.com/kochabx/webpush/store/redis"
	httpx "github.com/kochabx/webpush/transport/http"
)

const closeTimeout = 10 * time.Second

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

type runner struct {
	name string
	fn   func(ctx context.Context) error
}

// stack opens the backends named in the settings and remembers how to close
// them. Clients are shared between the key store and the subscription store.
type stack struct {
	settings *config.Settings
	logger   *log.Logger

	redis *redis.Client
	etcd  *etcd.Etcd

	closers []closer
	runners []runner
	health  map[string]httpx.HealthCheck
}

func newStack(settings *config.Settings, logger *log.Logger) *stack {
	return &stack{
		settings: settings,
		logger:   logger,
		health:   make(map[string]httpx.HealthCheck),
	}
}

// loadSettings reads the config file. An empty path yields the defaults,
// validated like a file would be.
func loadSettings(path string, opts ...config.Option) (*config.Settings, *config.Config, error) {
	s := new(config.Settings)
	if path == "" {
		if err := tag.ApplyDefaults(s); err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}

	opts = append([]config.Option{config.WithFile(filepath.Base(path), filepath.Dir(path))}, opts...)
	c := config.New(s, opts...)
	if err := c.Load(); err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

// newLogger installs the configured logger as the global one.
func newLogger(c log.Config) (*log.Logger, error) {
	logger, err := log.NewFromConfig(c)
	if err != nil {
		return nil, err
	}
	log.SetGlobalLogger(logger)
	return logger, nil
}

func (s *stack) onClose(name string, fn func(ctx context.Context) error) {
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

func (s *stack) redisClient(ctx context.Context) (*redis.Client, error) {
	if s.redis != nil {
		return s.redis, nil
	}
	client, err := redis.New(ctx, &s.settings.Store.Redis, redis.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	s.redis = client
	s.health["redis"] = client.Ping
	s.onClose("redis", func(context.Context) error { return client.Close() })
	return client, nil
}

func (s *stack) etcdClient(ctx context.Context) (*etcd.Etcd, error) {
	if s.etcd != nil {
		return s.etcd, nil
	}
	client, err := etcd.New(ctx, &s.settings.Store.Etcd, etcd.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("etcd: %w", err)
	}
	s.etcd = client
	s.health["etcd"] = client.Ping
	s.onClose("etcd", func(context.Context) error { return client.Close() })
	return client, nil
}

// identity provisions the VAPID identity from the configured key store. An
// etcd store also follows rotations made by other processes.
func (s *stack) identity(ctx context.Context) (*vapid.Identity, error) {
	name := s.settings.VAPID.Identity

	switch s.settings.VAPID.KeyStore {
	case "redis":
		client, err := s.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return vapid.Provision(ctx, redis.NewKeyStore(client), name)
	case "etcd":
		client, err := s.etcdClient(ctx)
		if err != nil {
			return nil, err
		}
		store := etcd.NewKeyStore(client)
		id, err := vapid.Provision(ctx, store, name)
		if err != nil {
			return nil, err
		}
		s.runners = append(s.runners, runner{name: "vapid-watch", fn: func(ctx context.Context) error {
			store.Watch(ctx, id)
			return nil
		}})
		return id, nil
	default:
		s.logger.Warn().Str("identity", name).Msg("vapid keys kept in memory, subscriptions will not survive a restart")
		return vapid.Provision(ctx, vapid.NewMemoryKeyStore(), name)
	}
}

func (s *stack) subscriptionStore(ctx context.Context) (push.SubscriptionStore, error) {
	switch s.settings.Store.Backend {
	case "redis":
		client, err := s.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return redis.NewSubscriptionStore(client), nil
	case "mongo":
		client, err := mongo.New(ctx, &s.settings.Store.Mongo, mongo.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		s.health["mongo"] = client.Ping
		s.onClose("mongo", func(context.Context) error { return client.Close() })
		return mongo.NewSubscriptionStore(ctx, client)
	case "db":
		cfg, err := s.settings.Store.DB.DriverConfig()
		if err != nil {
			return nil, err
		}
		client, err := db.New(ctx, cfg, db.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		s.health["db"] = client.Ping
		s.onClose("db", func(context.Context) error { return client.Close() })
		return db.NewSubscriptionStore(ctx, client)
	default:
		return push.NewMemoryStore(), nil
	}
}

// limiter shares counts through redis when a redis client is open, otherwise
// counts per process. A zero limit disables limiting.
func (s *stack) limiter() (rate.Limiter, error) {
	rl := s.settings.HTTP.RateLimit
	if rl.Limit == 0 {
		return nil, nil
	}
	if s.redis != nil {
		prefix := "{" + s.settings.Store.Redis.KeyPrefix + "}:ratelimit:"
		return rate.NewSlidingWindowLimiter(s.redis.UniversalClient(), prefix, rl.Window, rl.Limit)
	}
	return rate.NewLocalLimiter(rl.Window, rl.Limit)
}

func (s *stack) pusher(id *vapid.Identity) (*push.Pusher, error) {
	p := s.settings.Push
	return push.New(
		push.WithDefaultAuth(&vapid.Auth{
			Subject:    s.settings.VAPID.Subject,
			Identity:   id,
			Expiration: s.settings.VAPID.Expiration,
		}),
		push.WithDefaults(push.Options{TTL: p.TTL, Urgency: push.Urgency(p.Urgency), Topic: p.Topic}),
		push.WithPadding(p.Padding),
		push.WithTimeout(p.Timeout),
		push.WithLogger(s.logger.Named("push")),
	)
}

// dispatcher builds the sending loop. The pruner sink needs a store and is
// skipped without one; the kafka publisher is added when reports are on.
func (s *stack) dispatcher(sender push.Sender, store push.SubscriptionStore, reg prometheus.Registerer) (*dispatch.Dispatcher, error) {
	d := s.settings.Dispatch

	var sinks []push.ReportSink
	if store != nil && (d.Prune == nil || *d.Prune) {
		sinks = append(sinks, dispatch.NewPruner(store, s.logger.Named("pruner")))
	}
	if s.settings.Reports.Enabled {
		publisher, err := s.publisher()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, publisher)
	}

	opts := []dispatch.Option{
		dispatch.WithConcurrency(d.Concurrency),
		dispatch.WithBatchSize(d.BatchSize),
		dispatch.WithRetry(dispatch.NewExponentialBackoff(d.Retry.Initial, d.Retry.Max, d.Retry.MaxRetries)),
		dispatch.WithCircuitBreaker(d.Breaker.Threshold, d.Breaker.Cooldown),
		dispatch.WithSinks(sinks...),
		dispatch.WithLogger(s.logger.Named("dispatch")),
	}
	if reg != nil {
		opts = append(opts, dispatch.WithMetrics(dispatch.NewMetrics("webpush", reg)))
	}
	return dispatch.New(sender, opts...)
}

func (s *stack) publisher() (*kafka.Publisher, error) {
	client, err := kafka.New(&s.settings.Reports.Kafka, kafka.WithLogger(s.logger.Named("kafka")))
	if err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}
	s.health["kafka"] = client.Ping
	s.onClose("kafka", func(context.Context) error { return client.Close() })
	return kafka.NewPublisher(client, "")
}

// close runs the closers in reverse order of opening.
func (s *stack) close() {
	for _, c := range slices.Backward(s.closers) {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		if err := c.fn(ctx); err != nil {
			s.logger.Error().Err(err).Str("close", c.name).Msg("close failed")
		}
		cancel()
	}
	s.closers = nil
}

// validateSettings re-checks settings after flag overrides.
func validateSettings(s *config.Settings) error {
	return validator.Validate.Struct(s)
}
