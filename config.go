// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package cuecast holds the service configuration shared by its commands.
package cuecast

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cuehttp "github.com/absmach/cuecast/pkg/parser/http"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by NewConfig.
const EnvPrefix = "CUECAST_"

// Config holds the service configuration.
type Config struct {
	// Viewer server
	Address        string        `env:"ADDRESS"          envDefault:":8080"`
	CertFile       string        `env:"CERT_FILE"`
	KeyFile        string        `env:"KEY_FILE"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT"     envDefault:"120s"`
	MaxRequests    int           `env:"MAX_REQUESTS"     envDefault:"1000"`
	MaxRequestSize int           `env:"MAX_REQUEST_SIZE" envDefault:"1048576"`

	// Operations server (metrics and health). Empty disables it.
	OpsAddress string `env:"OPS_ADDRESS" envDefault:":9090"`

	// Observability
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Operators allowed to push state, as "name:password,name:password".
	Users string `env:"USERS"`

	// Rate Limiting (requests per second per viewer session; 0 disables)
	RateLimit      float64 `env:"RATE_LIMIT"       envDefault:"20"`
	RateBurst      int     `env:"RATE_BURST"       envDefault:"40"`
	RateMaxClients int     `env:"RATE_MAX_CLIENTS" envDefault:"10000"`

	// State
	SeedFile string `env:"SEED_FILE"`
	Timezone string `env:"TIMEZONE"  envDefault:"Local"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// NewConfig parses the configuration from the environment. An empty prefix
// in opts uses EnvPrefix.
func NewConfig(opts env.Options) (Config, error) {
	if opts.Prefix == "" {
		opts.Prefix = EnvPrefix
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Address == "" {
		return fmt.Errorf("%sADDRESS is required", EnvPrefix)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%sRATE_LIMIT must not be negative, got %v", EnvPrefix, c.RateLimit)
	}
	// Responses advertise Keep-Alive timeout and max; the server must not cut viewers off sooner.
	if c.IdleTimeout < cuehttp.KeepAliveTimeoutSeconds*time.Second {
		return fmt.Errorf("%sIDLE_TIMEOUT must be at least %ds, got %s", EnvPrefix, cuehttp.KeepAliveTimeoutSeconds, c.IdleTimeout)
	}
	if c.MaxRequests < cuehttp.KeepAliveMax {
		return fmt.Errorf("%sMAX_REQUESTS must be at least %d, got %d", EnvPrefix, cuehttp.KeepAliveMax, c.MaxRequests)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("%sCERT_FILE and %sKEY_FILE must be set together", EnvPrefix, EnvPrefix)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Clock strings in the cue document are rendered
// in this location.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid %sTIMEZONE %q: %w", EnvPrefix, c.Timezone, err)
	}
	return loc, nil
}

// Level maps LogLevel onto a slog level. Unknown names log at info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TLSConfig loads the configured certificate. It returns nil when TLS is not
// configured.
func (c Config) TLSConfig() (*tls.Config, error) {
	if c.CertFile == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
