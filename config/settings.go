package config

import (
	"time"

	"github.com/kochabx/webpush/log"
	"github.com/kochabx/webpush/store/db"
	"github.com/kochabx/webpush/store/etcd"
	"github.com/kochabx/webpush/store/kafka"
	"github.com/kochabx/webpush/store/mongo"
	"github.com/kochabx/webpush/store/redis"
)

// Settings is the webpush application configuration.
type Settings struct {
	VAPID    VAPID      `json:"vapid" mapstructure:"vapid"`
	Push     Push       `json:"push" mapstructure:"push"`
	Dispatch Dispatch   `json:"dispatch" mapstructure:"dispatch"`
	Store    Store      `json:"store" mapstructure:"store"`
	HTTP     HTTP       `json:"http" mapstructure:"http"`
	Reports  Reports    `json:"reports" mapstructure:"reports"`
	Log      log.Config `json:"log" mapstructure:"log"`
}

// VAPID selects the signing identity.
type VAPID struct {
	// Identity names the key pair in the key store.
	Identity string `json:"identity" mapstructure:"identity" default:"default" validate:"required"`
	// Subject is the operator contact, mailto: or https:.
	Subject    string        `json:"subject" mapstructure:"subject" validate:"required,startswith=mailto:|startswith=https:"`
	Expiration time.Duration `json:"expiration" mapstructure:"expiration" default:"12h" validate:"gt=0,lte=24h"`
	// KeyStore is where key pairs live: memory, redis or etcd.
	KeyStore string `json:"keyStore" mapstructure:"key_store" default:"memory" validate:"oneof=memory redis etcd"`
}

// Push holds the notification defaults and the transport bounds.
type Push struct {
	TTL      time.Duration `json:"ttl" mapstructure:"ttl" default:"672h" validate:"gte=0"`
	Urgency  string        `json:"urgency" mapstructure:"urgency" default:"normal" validate:"oneof=very-low low normal high"`
	Topic    string        `json:"topic" mapstructure:"topic" validate:"max=32"`
	Encoding string        `json:"encoding" mapstructure:"encoding" default:"aes128gcm" validate:"oneof=aes128gcm aesgcm"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout" default:"30s" validate:"gt=0"`
	Padding  int           `json:"padding" mapstructure:"padding" validate:"gte=0"`
}

// Dispatch configures the batching sending loop.
type Dispatch struct {
	Concurrency int `json:"concurrency" mapstructure:"concurrency" default:"16" validate:"gt=0"`
	BatchSize   int `json:"batchSize" mapstructure:"batch_size" default:"100" validate:"gt=0"`
	// Schedule is a cron spec for periodic flushes, empty disables them.
	Schedule string  `json:"schedule" mapstructure:"schedule" default:"@every 30s"`
	Retry    Retry   `json:"retry" mapstructure:"retry"`
	Breaker  Breaker `json:"breaker" mapstructure:"breaker"`
	// Prune deletes subscriptions the push service reports as expired.
	Prune *bool `json:"prune" mapstructure:"prune" default:"true"`
}

// Retry configures exponential backoff between attempts.
type Retry struct {
	MaxRetries int           `json:"maxRetries" mapstructure:"max_retries" default:"3" validate:"gte=0"`
	Initial    time.Duration `json:"initial" mapstructure:"initial" default:"1s" validate:"gt=0"`
	Max        time.Duration `json:"max" mapstructure:"max" default:"1m" validate:"gtefield=Initial"`
}

// Breaker configures the per push service circuit breaker.
type Breaker struct {
	Threshold int           `json:"threshold" mapstructure:"threshold" default:"5" validate:"gte=0"`
	Cooldown  time.Duration `json:"cooldown" mapstructure:"cooldown" default:"30s" validate:"gt=0"`
}

// Store selects the subscription backend and holds every backend's settings.
type Store struct {
	Backend string       `json:"backend" mapstructure:"backend" default:"memory" validate:"oneof=memory redis mongo db"`
	Redis   redis.Config `json:"redis" mapstructure:"redis"`
	Mongo   mongo.Config `json:"mongo" mapstructure:"mongo"`
	Etcd    etcd.Config  `json:"etcd" mapstructure:"etcd"`
	DB      db.Config    `json:"db" mapstructure:"db"`
}

// HTTP configures the subscription intake server.
type HTTP struct {
	Addr string `json:"addr" mapstructure:"addr" default:":8080" validate:"required"`
	// JWTSecret signs the owner bearer tokens, at least 32 bytes.
	JWTSecret string `json:"jwtSecret" mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	Metrics   *bool  `json:"metrics" mapstructure:"metrics" default:"true"`
	Health    *bool  `json:"health" mapstructure:"health" default:"true"`
	// RateLimit caps notification requests per owner.
	RateLimit RateLimit `json:"rateLimit" mapstructure:"rate_limit"`
}

// RateLimit is a sliding window; a zero limit disables it.
type RateLimit struct {
	Limit  int           `json:"limit" mapstructure:"limit" default:"60" validate:"gte=0"`
	Window time.Duration `json:"window" mapstructure:"window" default:"1m" validate:"gt=0"`
}

// Reports publishes dispatch reports to kafka when enabled.
type Reports struct {
	Enabled bool         `json:"enabled" mapstructure:"enabled"`
	Kafka   kafka.Config `json:"kafka" mapstructure:"kafka"`
}

// Load reads settings from the named file, applies defaults and validates.
func Load(name string, paths ...string) (*Settings, *Config, error) {
	s := new(Settings)
	c := New(s, WithFile(name, paths...))
	if err := c.Load(); err != nil {
		return nil, nil, err
	}
	return s, c, nil
}
