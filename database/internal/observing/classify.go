package observing

import (
	"time"
)

// Fixed log message templates. The level is the variable part; the text is not.
const (
	slowQueryFormat = "SLOW QUERY [%.2f s]: %s"
	queryFormat     = "QUERY: [%.1fms]: %s"
)

// LogQuery emits exactly one leveled record for a completed query operation.
// Classification depends only on elapsed time, never on the outcome:
//
//	elapsed >= critical threshold            -> warn
//	slow threshold <= elapsed < critical     -> info
//	elapsed < slow threshold                 -> debug
//
// Boundary values classify into the higher tier.
func LogQuery(oc *Context, queryText string, elapsed time.Duration) {
	if oc == nil || oc.Logger == nil {
		return
	}

	log := oc.Logger.WithFields(map[string]any{
		"vendor":      oc.Vendor,
		"conn_id":     oc.ConnID,
		"duration_ms": elapsed.Milliseconds(),
		"duration_ns": elapsed.Nanoseconds(),
	})

	switch {
	case elapsed >= oc.Settings.CriticalQueryThreshold():
		log.Warn().Msgf(slowQueryFormat, durationToSecs(elapsed), queryText)
	case elapsed >= oc.Settings.SlowQueryThreshold():
		log.Info().Msgf(slowQueryFormat, durationToSecs(elapsed), queryText)
	default:
		log.Debug().Msgf(queryFormat, durationToMillis(elapsed), queryText)
	}
}

// durationToMillis converts a duration to fractional milliseconds, so 250ms
// renders as 250.0 and 1.5ms as 1.5.
func durationToMillis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}

// durationToSecs converts a duration to fractional seconds, so 1500ms renders
// as 1.50 under the slow query template.
func durationToSecs(d time.Duration) float64 {
	return durationToMillis(d) / 1000
}

// TruncateString returns value truncated to at most maxLen runes, appending
// "..." when space allows. maxLen <= 0 disables truncation.
func TruncateString(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	r := []rune(value)
	if len(r) <= maxLen {
		return value
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
