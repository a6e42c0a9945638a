package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using its
// `env` and `envDefault` tags.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWith parses cfg from the process environment with overrides layered on
// top. The CLI uses this to let flags win over environment variables.
func LoadWith(cfg any, overrides map[string]string) error {
	environ := env.ToMap(os.Environ())
	for k, v := range overrides {
		if v != "" {
			environ[k] = v
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
