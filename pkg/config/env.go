package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. BIKEDASH_SERVER_PORT
const EnvPrefix = "BIKEDASH"

// ApplyEnv loads envFile into the process environment, if it exists, and then
// overrides cfg with any BIKEDASH_* variables. Variables already set in the
// environment win over the file.
func ApplyEnv(cfg *ConfigData, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
