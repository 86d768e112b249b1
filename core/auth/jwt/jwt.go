package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT issues and verifies owner tokens.
type JWT struct {
	config *Config
	method jwt.SigningMethod
	parser *jwt.Parser
	now    func() time.Time
}

// New creates a JWT from config, filling defaults.
func New(config *Config) (*JWT, error) {
	if config == nil {
		return nil, ErrConfigInvalid
	}
	if err := config.init(); err != nil {
		return nil, err
	}

	method := config.signingMethod()
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	for _, aud := range config.Audience {
		opts = append(opts, jwt.WithAudience(aud))
	}

	return &JWT{
		config: config,
		method: method,
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}, nil
}

// Issue signs a token for owner, valid for the configured TTL.
func (j *JWT) Issue(owner string) (string, error) {
	if owner == "" {
		return "", ErrMissingOwner
	}

	now := j.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   owner,
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.TTL)),
		},
	}
	if len(j.config.Audience) > 0 {
		claims.Audience = j.config.Audience
	}

	return jwt.NewWithClaims(j.method, claims).SignedString([]byte(j.config.Secret))
}

// Parse verifies the token and returns its claims.
func (j *JWT) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := j.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(j.config.Secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.Subject == "":
		return nil, ErrMissingOwner
	}
	return claims, nil
}
