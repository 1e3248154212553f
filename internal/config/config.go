// Package config loads application configuration and initializes logging.
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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Scorer  ScorerConfig  `yaml:"scorer" mapstructure:"scorer"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ExtractConfig configures document extraction.
type ExtractConfig struct {
	Strategy      string `yaml:"strategy" mapstructure:"strategy"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RulesConfig configures the source-specific parser registry.
type RulesConfig struct {
	// Path to an optional rules.yaml with per-source overrides. Built-in
	// rules always apply; file rules are evaluated first.
	Path string `yaml:"path" mapstructure:"path"`
}

// ScorerConfig holds the completeness score weights.
type ScorerConfig struct {
	ActivityWeight float64 `yaml:"activity_weight" mapstructure:"activity_weight"`
	AddressWeight  float64 `yaml:"address_weight" mapstructure:"address_weight"`
	PostcodeWeight float64 `yaml:"postcode_weight" mapstructure:"postcode_weight"`
}

// BatchConfig configures batch re-import behavior.
type BatchConfig struct {
	MaxConcurrent  int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	LaunchesPerSec float64 `yaml:"launches_per_sec" mapstructure:"launches_per_sec"`
}

// FetchConfig configures run-sheet file discovery.
type FetchConfig struct {
	Root    string    `yaml:"root" mapstructure:"root"`
	FTP     FTPConfig `yaml:"ftp" mapstructure:"ftp"`
	TempDir string    `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// FTPConfig holds FTP drop-folder settings.
type FTPConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Dir      string `yaml:"dir" mapstructure:"dir"`
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
	v.SetEnvPrefix("RUNSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "runsheets.db")
	v.SetDefault("extract.strategy", "table")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("extract.timeout_secs", 30)
	v.SetDefault("scorer.activity_weight", 0.4)
	v.SetDefault("scorer.address_weight", 0.3)
	v.SetDefault("scorer.postcode_weight", 0.3)
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("batch.launches_per_sec", 8.0)
	v.SetDefault("fetch.root", "runsheets")
	v.SetDefault("fetch.temp_dir", "/tmp/runsheet-cli")
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
