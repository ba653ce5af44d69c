// Package config loads process-level overrides from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds environment overrides. User-facing preferences live in the
// settings file; these knobs exist for development and packaging.
type Env struct {
	ConfigDir    string        `env:"DRIFTGLOW_CONFIG_DIR"`
	LogLevel     string        `env:"DRIFTGLOW_LOG_LEVEL" envDefault:"info"`
	LogJSON      bool          `env:"DRIFTGLOW_LOG_JSON"`
	SessionTick  time.Duration `env:"DRIFTGLOW_SESSION_TICK" envDefault:"1s"`
	RampTick     time.Duration `env:"DRIFTGLOW_RAMP_TICK" envDefault:"2s"`
	ScheduleTick time.Duration `env:"DRIFTGLOW_SCHEDULE_TICK" envDefault:"30s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Env, error) {
	var parsed Env
	if err := env.Parse(&parsed); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return parsed, nil
}
