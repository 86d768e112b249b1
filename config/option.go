package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/webpush/core/validator"
)

// Option is a function that configures a Config
type Option func(*Config)

// WithViper sets a custom viper instance
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator sets a custom validator
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader sets the configuration loader
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithFile loads the named file, searching paths in order. The file
// extension selects the format.
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		if len(paths) == 0 {
			paths = []string{"."}
		}
		c.loader = NewFileLoader(name, paths, c.viper, c.validate)
	}
}

// WithWatch enables or disables automatic configuration watching
func WithWatch(enable bool) Option {
	return func(c *Config) {
		c.watch = enable
	}
}

// WithOnChange registers a callback run after each successful reload
func WithOnChange(fn func()) Option {
	return func(c *Config) {
		c.onChange = append(c.onChange, fn)
	}
}
