// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Execute  ExecuteConfig  `yaml:"execute" mapstructure:"execute"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// DataConfig configures the data loader: sampling thresholds and cache TTL.
type DataConfig struct {
	LargeRows       int64 `yaml:"large_rows" mapstructure:"large_rows"`
	HugeRows        int64 `yaml:"huge_rows" mapstructure:"huge_rows"`
	SampleSize      int   `yaml:"sample_size" mapstructure:"sample_size"`
	LargeSampleSize int   `yaml:"large_sample_size" mapstructure:"large_sample_size"`
	SampleSeed      int64 `yaml:"sample_seed" mapstructure:"sample_seed"`
	CacheTTLSecs    int   `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
}

// ValidateConfig sets the default validation policy when a spec carries none.
type ValidateConfig struct {
	Strictness    string   `yaml:"strictness" mapstructure:"strictness"`
	SuppressCodes []string `yaml:"suppress_codes" mapstructure:"suppress_codes"`
}

// ExecuteConfig configures the execution engine.
type ExecuteConfig struct {
	PageWorkers int `yaml:"page_workers" mapstructure:"page_workers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DASHSPEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "dashspec.db")
	v.SetDefault("data.large_rows", 100_000)
	v.SetDefault("data.huge_rows", 1_000_000)
	v.SetDefault("data.sample_size", 50_000)
	v.SetDefault("data.large_sample_size", 100_000)
	v.SetDefault("data.sample_seed", 42)
	v.SetDefault("data.cache_ttl_secs", 3600)
	v.SetDefault("validate.strictness", "moderate")
	v.SetDefault("execute.page_workers", 4)
	v.SetDefault("server.port", 8080)
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
