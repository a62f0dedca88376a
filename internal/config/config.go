package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Model     ModelConfig     `mapstructure:"model"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port               string   `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PostgresDSN builds a lib/pq keyword DSN unless an explicit DSN is set.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type ModelConfig struct {
	Provider        string        `mapstructure:"provider"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	AnthropicModel  string        `mapstructure:"anthropic_model"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL   string        `mapstructure:"openai_base_url"`
	OpenAIModel     string        `mapstructure:"openai_model"`
	CLIPath         string        `mapstructure:"cli_path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Concurrency     int           `mapstructure:"concurrency"`
}

type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type StorageConfig struct {
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var defaults = map[string]any{
	"server.port":                 "8080",
	"server.cors_allowed_origins": []string{"*"},

	"database.driver":   "postgres",
	"database.dsn":      "",
	"database.host":     "localhost",
	"database.port":     "5432",
	"database.user":     "assess_user",
	"database.password": "assess_password",
	"database.name":     "assessments",
	"database.sslmode":  "disable",

	"model.provider":          "anthropic",
	"model.anthropic_api_key": "",
	"model.anthropic_model":   "claude-sonnet-4-5-20250929",
	"model.openai_api_key":    "",
	"model.openai_base_url":   "",
	"model.openai_model":      "gpt-4o-mini",
	"model.cli_path":          "claude",
	"model.timeout":           60 * time.Second,
	"model.concurrency":       1,

	"fetch.timeout":   30 * time.Second,
	"fetch.max_bytes": int64(50 << 20),

	"storage.minio_endpoint":   "",
	"storage.minio_access_key": "",
	"storage.minio_secret_key": "",
	"storage.minio_use_ssl":    false,

	"auth.jwt_secret": "",

	"rate_limit.max_requests": 20,
	"rate_limit.window":       time.Minute,

	"log.level": "info",
	"log.file":  "",
}

var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",

	"database.driver":   "DB_DRIVER",
	"database.dsn":      "DB_DSN",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",

	"model.provider":          "MODEL_PROVIDER",
	"model.anthropic_api_key": "ANTHROPIC_API_KEY",
	"model.anthropic_model":   "ANTHROPIC_MODEL",
	"model.openai_api_key":    "OPENAI_API_KEY",
	"model.openai_base_url":   "OPENAI_BASE_URL",
	"model.openai_model":      "OPENAI_MODEL",
	"model.cli_path":          "CLAUDE_CLI_PATH",
	"model.timeout":           "MODEL_TIMEOUT",
	"model.concurrency":       "MODEL_CONCURRENCY",

	"fetch.timeout":   "FETCH_TIMEOUT",
	"fetch.max_bytes": "FETCH_MAX_BYTES",

	"storage.minio_endpoint":   "MINIO_ENDPOINT",
	"storage.minio_access_key": "MINIO_ACCESS_KEY",
	"storage.minio_secret_key": "MINIO_SECRET_KEY",
	"storage.minio_use_ssl":    "MINIO_USE_SSL",

	"auth.jwt_secret": "JWT_SECRET",

	"rate_limit.max_requests": "RATE_LIMIT_MAX_REQUESTS",
	"rate_limit.window":       "RATE_LIMIT_WINDOW",

	"log.level": "LOG_LEVEL",
	"log.file":  "LOG_FILE",
}

// Load reads config.yaml from path (if present) and overlays environment
// variables. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Model.Concurrency < 1 {
		c.Model.Concurrency = 1
	}
	var origins []string
	for _, o := range c.Server.CORSAllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.Server.CORSAllowedOrigins = origins
}

var validProviders = map[string]bool{"anthropic": true, "openai": true, "cli": true, "mock": true, "none": true}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []string
	if !validProviders[c.Model.Provider] {
		errs = append(errs, fmt.Sprintf("model.provider %q must be one of anthropic, openai, cli, mock, none", c.Model.Provider))
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Sprintf("database.driver %q must be postgres or sqlite", c.Database.Driver))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, "fetch.timeout must be positive")
	}
	if c.RateLimit.MaxRequests < 0 || c.RateLimit.Window < 0 {
		errs = append(errs, "rate_limit values must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
