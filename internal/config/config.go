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
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig names the pipeline's published JSON files and inputs.
type DataConfig struct {
	NoticesFile       string `yaml:"notices_file" mapstructure:"notices_file"`
	GroupsFile        string `yaml:"groups_file" mapstructure:"groups_file"`
	FailedFile        string `yaml:"failed_file" mapstructure:"failed_file"`
	ScrapeDir         string `yaml:"scrape_dir" mapstructure:"scrape_dir"`
	AbbreviationsFile string `yaml:"abbreviations_file" mapstructure:"abbreviations_file"`
}

// FetchConfig configures the weekly download stage.
type FetchConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	WeeklyPath     string `yaml:"weekly_path" mapstructure:"weekly_path"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinIntervalMs  int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
	RetryAttempts  int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryStepMs    int    `yaml:"retry_step_ms" mapstructure:"retry_step_ms"`
	ParseWorkers   int    `yaml:"parse_workers" mapstructure:"parse_workers"`
}

// NominatimConfig configures the geocoding provider client.
type NominatimConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Email         string `yaml:"email" mapstructure:"email"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	MinIntervalMs int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
	RetryAttempts int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryStepMs   int    `yaml:"retry_step_ms" mapstructure:"retry_step_ms"`
}

// StoreConfig configures the persistent geocode cache and run log.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port        int    `yaml:"port" mapstructure:"port"`
	FrontendDir string `yaml:"frontend_dir" mapstructure:"frontend_dir"`
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
	v.SetEnvPrefix("FOODWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.notices_file", "penalty_notices.json")
	v.SetDefault("data.groups_file", "grouped_locations.json")
	v.SetDefault("data.failed_file", "failed_geocoding.json")
	v.SetDefault("data.scrape_dir", ".")
	v.SetDefault("fetch.base_url", "https://www.foodauthority.nsw.gov.au")
	v.SetDefault("fetch.weekly_path", "/offences/penalty-notices/week")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.min_interval_ms", 1200)
	v.SetDefault("fetch.retry_attempts", 3)
	v.SetDefault("fetch.retry_step_ms", 2000)
	v.SetDefault("fetch.parse_workers", 8)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.min_interval_ms", 1200)
	v.SetDefault("nominatim.retry_attempts", 3)
	v.SetDefault("nominatim.retry_step_ms", 2000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "offences.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.frontend_dir", "frontend/public")
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
