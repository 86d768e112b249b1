package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/webpush/core/tag"
)

// Config JWT 配置
type Config struct {
	// Secret HMAC 密钥
	Secret string `json:"secret" mapstructure:"secret" validate:"required,min=32"`

	// SigningMethod 仅支持 HMAC 系列
	SigningMethod string        `json:"signingMethod" mapstructure:"signing_method" default:"HS256" validate:"oneof=HS256 HS384 HS512"`
	TTL           time.Duration `json:"ttl" mapstructure:"ttl" default:"720h" validate:"gt=0"`

	// 标准 Claims 配置
	Issuer   string   `json:"issuer" mapstructure:"issuer" default:"webpush"`
	Audience []string `json:"audience" mapstructure:"audience"`
}

func (c *Config) init() error {
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	if c.Secret == "" {
		return ErrEmptySecret
	}
	if c.signingMethod() == nil {
		return ErrConfigInvalid
	}
	return nil
}

func (c *Config) signingMethod() jwt.SigningMethod {
	switch c.SigningMethod {
	case "HS256":
		return jwt.SigningMethodHS256
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return nil
	}
}
