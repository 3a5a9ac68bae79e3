package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvFiles are loaded, in order, before configuration is read. Variables
// already present in the environment are never overridden.
var EnvFiles = []string{".env", ".env.local"}

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Enrich EnrichConfig `yaml:"enrich" mapstructure:"enrich"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and sizes the listing store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// IngestConfig configures CSV ingestion.
type IngestConfig struct {
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
	SourceLabel string `yaml:"source_label" mapstructure:"source_label"`
	SampleSize  int    `yaml:"sample_size" mapstructure:"sample_size"`
}

// EnrichConfig configures website discovery.
type EnrichConfig struct {
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RatePerHost  float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	SampleSize   int     `yaml:"sample_size" mapstructure:"sample_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the settings commands depend on.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for postgres (SEED_STORE_DATABASE_URL or DATABASE_URL)")
		}
	case "sqlite":
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Ingest.BatchSize <= 0 {
		return eris.New("config: ingest.batch_size must be positive")
	}
	if c.Enrich.Concurrency <= 0 {
		return eris.New("config: enrich.concurrency must be positive")
	}
	return nil
}

// LoadEnvFiles loads each existing file in paths into the process
// environment without overriding variables that are already set.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return eris.Wrapf(err, "config: load %s", p)
		}
	}
	return nil
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	if err := LoadEnvFiles(EnvFiles...); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("store.database_url", "SEED_STORE_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, eris.Wrap(err, "config: bind database url")
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("ingest.batch_size", 100)
	v.SetDefault("ingest.page_size", 1000)
	v.SetDefault("ingest.source_label", "public_web_seed")
	v.SetDefault("ingest.sample_size", 5)
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("enrich.timeout_secs", 20)
	v.SetDefault("enrich.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	v.SetDefault("enrich.max_body_bytes", 2<<20)
	v.SetDefault("enrich.rate_per_host", 10)
	v.SetDefault("enrich.sample_size", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
