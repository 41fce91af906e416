package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyEnv      = "IDEOGRAM_API_KEY"
	keyParamEnv = "IDEOGRAM_API_KEY_PARAM"
	baseURLEnv  = "IDEOGRAM_BASE_URL"
	timeoutEnv  = "IDEOGRAM_TIMEOUT"

	DefaultBaseURL = "https://api.ideogram.ai"
	DefaultTimeout = 120 * time.Second
)

// Config is read from the environment only; there is no config file. The API
// key itself is not part of it and is looked up when a request is made.
type Config struct {
	BaseURL  string        `mapstructure:"IDEOGRAM_BASE_URL" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"IDEOGRAM_TIMEOUT" validate:"gt=0"`
	KeyParam string        `mapstructure:"IDEOGRAM_API_KEY_PARAM"`
}

// NewEnv returns a viper instance bound to the process environment.
func NewEnv() *viper.Viper {
	env := viper.New()
	env.AutomaticEnv()
	env.SetDefault(baseURLEnv, DefaultBaseURL)
	env.SetDefault(timeoutEnv, DefaultTimeout)
	env.SetDefault(keyParamEnv, "")
	return env
}

func Load(env *viper.Viper) (*Config, error) {
	var cfg Config
	if err := env.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
