package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pos-gateway/internal/config"
	"pos-gateway/middleware/ratelimit"
	"pos-gateway/middleware/session"
	sessioninfra "pos-gateway/middleware/session/infra"
)

const (
	statsNone       = "none"
	statsMemory     = "memory"
	statsRedis      = "redis"
	statsPrometheus = "prometheus"
)

// Config do gateway, lida do ambiente (e de um .env opcional).
type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	UpstreamURL string `env:"UPSTREAM_URL"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`

	// SessionSecrets é uma lista separada por vírgula; o primeiro assina.
	SessionSecrets       string   `env:"SESSION_SECRETS"`
	SessionIssuer        string   `env:"SESSION_ISSUER" envDefault:"pos-gateway"`
	SessionCookieName    string   `env:"SESSION_COOKIE_NAME" envDefault:"pos_session"`
	SessionCookieDomain  string   `env:"SESSION_COOKIE_DOMAIN"`
	SessionLegacyCookies []string `env:"SESSION_LEGACY_COOKIES" envDefault:"user"`

	LoginPath         string   `env:"LOGIN_PATH" envDefault:"/api/auth/login"`
	LogoutPath        string   `env:"LOGOUT_PATH" envDefault:"/api/auth/logout"`
	ProtectedPrefixes []string `env:"PROTECTED_PREFIXES" envDefault:"/api/"`
	SensitivePrefixes []string `env:"SENSITIVE_PREFIXES" envDefault:"/api/users,/api/branches,/api/costs"`

	RateEnabled        bool          `env:"RATE_ENABLED" envDefault:"true"`
	RateDefaultProfile string        `env:"RATE_DEFAULT_PROFILE" envDefault:"api"`
	RateUseRemoteAddr  bool          `env:"RATE_USE_REMOTE_ADDR" envDefault:"true"`
	RateJanitorEvery   time.Duration `env:"RATE_JANITOR_INTERVAL" envDefault:"1m"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`

	StatsBackend       string        `env:"RATE_STATS_BACKEND" envDefault:"none"`
	StatsRedisAddr     string        `env:"RATE_STATS_REDIS_ADDR"`
	StatsRedisPassword string        `env:"RATE_STATS_REDIS_PASSWORD"`
	StatsRedisDB       int           `env:"RATE_STATS_REDIS_DB" envDefault:"0"`
	StatsPrefix        string        `env:"RATE_STATS_PREFIX" envDefault:"pos:ratelimit:stats"`
	StatsTTL           time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	StatsBucket        string        `env:"RATE_STATS_BUCKET" envDefault:"minute"`
	StatsTrackKeys     bool          `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`
	MetricsPath        string        `env:"METRICS_PATH" envDefault:"/metrics"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UpstreamURL) == "" {
		return errors.New("UPSTREAM_URL is required")
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("UPSTREAM_URL must be an absolute URL, got %q", c.UpstreamURL)
	}

	secrets := c.Secrets()
	if len(secrets) == 0 {
		return errors.New("SESSION_SECRETS is required")
	}
	for i, s := range secrets {
		if len(s) < sessioninfra.MinSecretLength {
			return fmt.Errorf("SESSION_SECRETS item %d must have at least %d chars", i, sessioninfra.MinSecretLength)
		}
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = session.DefaultCookieName
	}

	profile, err := ratelimit.ProfileByName(c.RateDefaultProfile)
	if err != nil {
		return fmt.Errorf("RATE_DEFAULT_PROFILE: %w", err)
	}
	// profileFor devolve este nome como chave do mapa de perfis
	c.RateDefaultProfile = profile.Name
	if c.RateJanitorEvery <= 0 {
		return errors.New("RATE_JANITOR_INTERVAL must be > 0")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}

	switch c.StatsBackend {
	case statsNone, statsMemory, statsPrometheus:
	case statsRedis:
		if strings.TrimSpace(c.StatsRedisAddr) == "" {
			return errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_BACKEND=redis")
		}
	default:
		return fmt.Errorf("RATE_STATS_BACKEND must be one of none|memory|redis|prometheus, got %q", c.StatsBackend)
	}
	return nil
}

func (c Config) Secrets() []string { return config.SplitList(c.SessionSecrets) }

// profileFor escolhe o perfil de rate limit pelo path já limpo (cleanPath).
func (c Config) profileFor(path string) string {
	if path == c.LoginPath {
		return ratelimit.Login.Name
	}
	if hasAnyPrefix(path, c.SensitivePrefixes) {
		return ratelimit.Sensitive.Name
	}
	return c.RateDefaultProfile
}

// isProtected: login e logout ficam sempre abertos.
func (c Config) isProtected(path string) bool {
	if path == c.LoginPath || path == c.LogoutPath {
		return false
	}
	return hasAnyPrefix(path, c.ProtectedPrefixes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
