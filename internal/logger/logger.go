// Package logger monta o *slog.Logger dos binários: JSON em produção,
// texto em desenvolvimento, sempre com service/env.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvProduction  = "production"
	EnvStaging     = "staging"
	EnvDevelopment = "development"
)

type Option func(*config)

type config struct {
	level  slog.Level
	json   bool
	output io.Writer
}

func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithLevel aceita debug|info|warn|error; valor desconhecido é ignorado.
func WithLevel(level string) Option {
	return func(c *config) {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err == nil {
			c.level = l
		}
	}
}

// IsProduction aceita "production" e "prod".
func IsProduction(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == EnvProduction || env == "prod"
}

// New cria o logger do serviço para o ambiente.
func New(service, env string, opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelDebug, output: os.Stdout}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvProduction, "prod", EnvStaging, "stage":
		cfg.level = slog.LevelInfo
		cfg.json = true
	default:
		env = EnvDevelopment
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var h slog.Handler
	if cfg.json {
		h = slog.NewJSONHandler(cfg.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(cfg.output, handlerOpts)
	}

	return slog.New(h).With(
		slog.String("service", service),
		slog.String("env", env),
	)
}

// Error é o atributo padrão para erros; nil vira atributo vazio.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}
