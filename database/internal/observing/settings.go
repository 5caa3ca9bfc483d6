// Package observing implements the query observation decorator.
// It wraps an arbitrary types.Conn, times every work-performing operation and
// emits leveled log records based on latency thresholds, without altering
// query semantics, results, or transaction behavior.
package observing

import (
	"time"

	"github.com/dbscope/dbscope/config"
	"github.com/dbscope/dbscope/logger"
)

const (
	// DefaultSlowQueryThreshold is the elapsed time at which a query is logged
	// at info level instead of debug.
	DefaultSlowQueryThreshold = 1 * time.Second
	// DefaultCriticalQueryThreshold is the elapsed time at which a query is
	// logged at warn level.
	DefaultCriticalQueryThreshold = 5 * time.Second
	// DefaultMaxQueryLength is the default maximum rendered query length for logging.
	DefaultMaxQueryLength = 1000
)

// Settings holds the per-connection observation knobs.
type Settings struct {
	slowThreshold     time.Duration
	criticalThreshold time.Duration
	maxQueryLength    int
	logParameters     bool
}

// Context groups observation parameters passed to shared helpers.
type Context struct {
	Logger   logger.Logger
	Vendor   string
	ConnID   string
	Settings Settings
}

// NewSettings derives Settings from cfg. A nil cfg or non-positive numeric
// field falls back to the defaults, which preserve the historical fixed
// two-tier policy (1s info, 5s warn).
func NewSettings(cfg *config.DatabaseConfig) Settings {
	settings := Settings{
		slowThreshold:     DefaultSlowQueryThreshold,
		criticalThreshold: DefaultCriticalQueryThreshold,
		maxQueryLength:    DefaultMaxQueryLength,
		logParameters:     false,
	}

	if cfg == nil {
		return settings
	}

	if cfg.Query.Slow.Threshold > 0 {
		settings.slowThreshold = cfg.Query.Slow.Threshold
	}
	if cfg.Query.Slow.Critical > 0 {
		settings.criticalThreshold = cfg.Query.Slow.Critical
	}
	if settings.criticalThreshold < settings.slowThreshold {
		settings.criticalThreshold = settings.slowThreshold
	}
	if cfg.Query.Log.MaxLength > 0 {
		settings.maxQueryLength = cfg.Query.Log.MaxLength
	}
	settings.logParameters = cfg.Query.Log.Parameters

	return settings
}

// SlowQueryThreshold returns the info-tier latency threshold.
func (s Settings) SlowQueryThreshold() time.Duration {
	return s.slowThreshold
}

// CriticalQueryThreshold returns the warn-tier latency threshold.
func (s Settings) CriticalQueryThreshold() time.Duration {
	return s.criticalThreshold
}

// MaxQueryLength returns the maximum rendered query length for logging.
func (s Settings) MaxQueryLength() int {
	return s.maxQueryLength
}

// LogQueryParameters returns whether bind arguments are included in the
// rendered query text.
func (s Settings) LogQueryParameters() bool {
	return s.logParameters
}
