package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Ask      AskConfig      `mapstructure:"ask"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CacheConfig selects the KV backend and the two TTL windows: one for the
// scraped case collection, one for synthesized answers.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	CaseTTL   time.Duration `mapstructure:"case_ttl"`
	AnswerTTL time.Duration `mapstructure:"answer_ttl"`
}

// DatabaseConfig applies when the cache backend is sqlite.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ScrapeConfig struct {
	SourcesFile string        `mapstructure:"sources_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type LLMConfig struct {
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AskConfig bounds how long a foreground question may wait on case data.
type AskConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CASEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("llm_model", cfg.LLM.Model),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	switch strings.ToLower(cfg.Cache.Backend) {
	case "redis":
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			return errors.New("cache.redis_addr is required for the redis backend")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("database.dsn is required for the sqlite backend")
		}
	default:
		return errors.New("cache.backend must be redis or sqlite")
	}

	if strings.TrimSpace(cfg.LLM.Model) == "" {
		return errors.New("llm.model is required")
	}
	if cfg.Cache.CaseTTL <= 0 || cfg.Cache.AnswerTTL <= 0 {
		return errors.New("cache ttl values must be positive")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "casebot")
	v.SetDefault("app.env", "local")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("cache.backend", "redis")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.case_ttl", "3h")
	v.SetDefault("cache.answer_ttl", "3h")

	v.SetDefault("database.dsn", ".casebot/state/cache.sqlite")

	v.SetDefault("scrape.sources_file", "configs/sources.toml")
	v.SetDefault("scrape.timeout", "10s")
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; Casebot/1.0)")

	v.SetDefault("llm.model", "mistralai/mistral-7b-instruct")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 600)
	v.SetDefault("llm.timeout", "20s")

	v.SetDefault("ask.timeout", "10s")
}
