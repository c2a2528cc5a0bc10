// internal/server/config.go
package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds server process settings. Defaults come from MEAL_RISK_*
// environment variables; command-line flags override them before Validate.
type Config struct {
	Transport      string `envconfig:"TRANSPORT" default:"http" validate:"oneof=http"`
	Host           string `envconfig:"HOST" default:"0.0.0.0" validate:"required"`
	Port           int    `envconfig:"PORT" default:"8012" validate:"gt=0,lte=65535"`
	DBPath         string `envconfig:"DB_PATH" default:"/data/meal-risk.db" validate:"required"`
	ThresholdsPath string `envconfig:"THRESHOLDS_PATH" default:"configs/thresholds.json" validate:"required"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=json text"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// LoadConfig reads settings from the environment. It does not validate;
// call Validate after applying any flag overrides.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("meal_risk", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}
