// Package config loads and validates dbscope configuration from defaults,
// YAML files, and environment variables.
package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Environment names recognized in app.env.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the root configuration structure.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`

	k *koanf.Koanf
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name  string `koanf:"name" validate:"required"`
	Env   string `koanf:"env" validate:"oneof=development staging production"`
	Debug bool   `koanf:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal disabled"`
	Pretty bool   `koanf:"pretty"`
}

// DatabaseConfig holds connection settings for the wrapped database plus the
// query observation knobs consumed by the observing layer.
type DatabaseConfig struct {
	Vendor           string        `koanf:"vendor" validate:"omitempty,oneof=postgresql oracle"`
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port" validate:"gte=0,lte=65535"`
	Database         string        `koanf:"database"`
	Username         string        `koanf:"username"`
	Password         string        `koanf:"password"`
	SSLMode          string        `koanf:"ssl_mode"`
	MaxConns         int32         `koanf:"max_conns" validate:"gte=0"`
	MaxIdleConns     int32         `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime  time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `koanf:"conn_max_idle_time"`
	ConnectionString string        `koanf:"connection_string"`

	// Oracle-specific settings
	ServiceName string `koanf:"service_name"`
	SID         string `koanf:"sid"`

	Query QueryConfig `koanf:"query"`
}

// QueryConfig holds settings for query observation and logging.
type QueryConfig struct {
	Slow SlowQueryConfig `koanf:"slow"`
	Log  QueryLogConfig  `koanf:"log"`
}

// SlowQueryConfig holds the latency thresholds that drive log level selection.
// Threshold is the info tier, Critical the warn tier. Critical must not be
// below Threshold.
type SlowQueryConfig struct {
	Threshold time.Duration `koanf:"threshold"`
	Critical  time.Duration `koanf:"critical"`
}

// QueryLogConfig holds settings for rendered query logging.
type QueryLogConfig struct {
	Parameters bool `koanf:"parameters"`
	MaxLength  int  `koanf:"max" validate:"gte=0"`
}

// Raw exposes the underlying koanf instance for flexible key access.
// It returns nil for configs not produced by Load.
func (c *Config) Raw() *koanf.Koanf {
	return c.k
}
