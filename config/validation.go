package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints on cfg plus the cross-field rules the
// tag language cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := validate.Struct(cfg); err != nil {
		return err
	}

	slow := cfg.Database.Query.Slow
	if slow.Threshold < 0 || slow.Critical < 0 {
		return fmt.Errorf("slow query thresholds must not be negative")
	}
	if slow.Threshold > 0 && slow.Critical > 0 && slow.Critical < slow.Threshold {
		return fmt.Errorf("slow query critical threshold (%s) must not be below the slow threshold (%s)",
			slow.Critical, slow.Threshold)
	}

	return nil
}
