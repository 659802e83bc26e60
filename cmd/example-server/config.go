package main

import (
	"errors"

	"pos-gateway/internal/config"
)

type Config struct {
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":8081"`
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL"`
	SessionSecrets string   `env:"SESSION_SECRETS"`
	// DemoUsers é separado por ";".
	DemoUsers      []string `env:"DEMO_USERS" envSeparator:";"`
	ConcurrencyMax int      `env:"CONCURRENCY_MAX" envDefault:"50"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(config.SplitList(c.SessionSecrets)) == 0 {
		return errors.New("SESSION_SECRETS is required")
	}
	return nil
}
