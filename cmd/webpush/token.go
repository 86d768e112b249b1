package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/pflag"

	"github.com/kochabx/webpush/config"
	"github.com/kochabx/webpush/core/auth/jwt"
)

// runToken issues an owner bearer token for the intake API.
func runToken(_ context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", "config.yaml", "config file")
	owner := fs.StringP("owner", "o", "", "subscription owner id")
	ttl := fs.Duration("ttl", 0, "token lifetime, 720h when zero")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *owner == "" {
		return errors.New("--owner is required")
	}

	settings, _, err := loadSettings(*cfgPath, config.WithWatch(false))
	if err != nil {
		return err
	}
	if settings.HTTP.JWTSecret == "" {
		return errors.New("http.jwt_secret is not configured")
	}

	tokens, err := jwt.New(&jwt.Config{Secret: settings.HTTP.JWTSecret, TTL: *ttl})
	if err != nil {
		return err
	}
	token, err := tokens.Issue(*owner)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, token+"\n")
	return err
}
