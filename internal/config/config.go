package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jwalitptl/optica-admin/internal/middleware"
	"github.com/jwalitptl/optica-admin/internal/repository/postgres"
	"github.com/jwalitptl/optica-admin/internal/service/document"
	"github.com/jwalitptl/optica-admin/pkg/auth"
	"github.com/jwalitptl/optica-admin/pkg/logger"
	"github.com/jwalitptl/optica-admin/pkg/messaging/redis"
)

// EnvPrefix namespaces environment overrides, e.g. OPTICA_DATABASE_HOST.
const EnvPrefix = "OPTICA"

// Config is the API server configuration.
type Config struct {
	Server    ServerConfig            `mapstructure:"server"`
	Database  postgres.Config         `mapstructure:"database"`
	JWT       auth.Config             `mapstructure:"jwt"`
	Renderer  document.RendererConfig `mapstructure:"renderer"`
	CORS      middleware.CORSConfig   `mapstructure:"cors"`
	RateLimit RateLimitConfig         `mapstructure:"rate_limit"`
	Log       logger.Config           `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	PublicURL      string        `mapstructure:"public_url"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Migrate        bool          `mapstructure:"migrate"`
	Production     bool          `mapstructure:"production"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ConsoleConfig is read by the operator console.
type ConsoleConfig struct {
	APIURL   string        `mapstructure:"api_url"`
	Email    string        `mapstructure:"email"`
	Password string        `mapstructure:"password"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PerPage  int           `mapstructure:"per_page"`
	// CacheTTL bounds how long a fetched page is reused.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Redis    redis.Config  `mapstructure:"redis"`
	Log      logger.Config `mapstructure:"log"`
}

func newViper(name string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// read loads path, or the named file from the search paths when path is
// empty. A missing file is fine; defaults and environment still apply.
func read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func apiDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.migrate", true)
	v.SetDefault("server.production", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "optica")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "optica-admin")
	v.SetDefault("jwt.access_token_ttl", 12*time.Hour)
	v.SetDefault("jwt.document_token_ttl", 5*time.Minute)

	v.SetDefault("renderer.url", "http://localhost:3000")
	v.SetDefault("renderer.timeout", 20*time.Second)

	cors := middleware.DefaultCORSConfig()
	v.SetDefault("cors.allow_origins", cors.AllowOrigins)
	v.SetDefault("cors.allow_methods", cors.AllowMethods)
	v.SetDefault("cors.allow_headers", cors.AllowHeaders)
	v.SetDefault("cors.expose_headers", cors.ExposeHeaders)
	v.SetDefault("cors.allow_credentials", cors.AllowCredentials)
	v.SetDefault("cors.max_age", cors.MaxAge)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the API configuration from path (or config.yml on the search
// paths) with OPTICA_* environment overrides.
func Load(path string) (*Config, error) {
	v := newViper("config")
	apiDefaults(v)
	if err := read(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required")
	}
	return &cfg, nil
}

// LoadConsole reads console.yml (or path) with OPTICA_* overrides.
func LoadConsole(path string) (*ConsoleConfig, error) {
	v := newViper("console")
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("per_page", 15)
	v.SetDefault("cache_ttl", 30*time.Second)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 2)
	v.SetDefault("redis.breaker_failures", 5)
	v.SetDefault("redis.breaker_timeout", 5*time.Second)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	if err := read(v, path); err != nil {
		return nil, err
	}

	var cfg ConsoleConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
