// Package config loads process settings: defaults, then an optional YAML
// file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/edkuperman/cronzimus/internal/db"
	"github.com/edkuperman/cronzimus/internal/logger"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Environment string          `yaml:"environment" env:"ENVIRONMENT"`
	HTTP        HTTPConfig      `yaml:"http"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
	Log         logger.Config   `yaml:"log"`
	Database    db.Config       `yaml:"database"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type SchedulerConfig struct {
	// Timezone is an IANA name used for cron triggers without their own.
	Timezone    string        `yaml:"timezone" env:"SCHEDULER_TIMEZONE"`
	StopTimeout time.Duration `yaml:"stop_timeout" env:"SCHEDULER_STOP_TIMEOUT"`
	APIEnabled  bool          `yaml:"api_enabled" env:"SCHEDULER_API_ENABLED"`
}

func Default() Config {
	return Config{
		Environment: EnvDevelopment,
		HTTP: HTTPConfig{
			Addr:            "0.0.0.0:5000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			StopTimeout: 30 * time.Second,
			APIEnabled:  true,
		},
		Log:      logger.DefaultConfig(),
		Database: db.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	// ENV is accepted as a shorter alias.
	if _, set := os.LookupEnv("ENVIRONMENT"); !set {
		if v := os.Getenv("ENV"); v != "" {
			cfg.Environment = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Environment) {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("environment %q is not one of development, staging, production", c.Environment))
	}
	if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("http.addr %q: %w", c.HTTP.Addr, err))
	}
	for name, d := range map[string]time.Duration{
		"http.read_timeout":      c.HTTP.ReadTimeout,
		"http.write_timeout":     c.HTTP.WriteTimeout,
		"http.shutdown_timeout":  c.HTTP.ShutdownTimeout,
		"scheduler.stop_timeout": c.Scheduler.StopTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", name))
		}
	}
	if c.Scheduler.Timezone != "" {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("scheduler.timezone: %w", err))
		}
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not a known level", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	if c.Log.FileMaxSizeMB < 0 || c.Log.FileMaxBackups < 0 {
		errs = append(errs, errors.New("log file rotation limits must not be negative"))
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("database pool sizes min=%d max=%d are inconsistent", c.Database.MinConns, c.Database.MaxConns))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalid}, errs...)...)
}

// Location resolves the scheduler time zone, defaulting to local time.
func (c Config) Location() *time.Location {
	if c.Scheduler.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}
