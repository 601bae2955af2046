package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/safarihq/sikukuu/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Country  CountryConfig  `yaml:"country" mapstructure:"country"`
	Baseline BaselineConfig `yaml:"baseline" mapstructure:"baseline"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// CountryConfig selects the country whose holidays are tracked.
type CountryConfig struct {
	Code string `yaml:"code" mapstructure:"code"`
}

// BaselineConfig configures the structured holiday feed.
type BaselineConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScrapeConfig configures announcement scraping.
type ScrapeConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	HostRate    float64 `yaml:"host_rate" mapstructure:"host_rate"`
	SourcesFile string  `yaml:"sources_file" mapstructure:"sources_file"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port              int    `yaml:"port" mapstructure:"port"`
	CORSAllowedOrigin string `yaml:"cors_allowed_origin" mapstructure:"cors_allowed_origin"`
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
	v.SetEnvPrefix("SIKUKUU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sikukuu.db")
	v.SetDefault("country.code", "KE")
	v.SetDefault("baseline.base_url", "https://date.nager.at/api/v3/PublicHolidays")
	v.SetDefault("baseline.timeout_secs", 25)
	v.SetDefault("scrape.timeout_secs", 25)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.host_rate", 2.0)
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

// Validate checks the configuration for a given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	if c.Country.Code == "" {
		problems = append(problems, "country.code is required")
	}

	switch mode {
	case "ingest":
		if c.Baseline.BaseURL == "" {
			problems = append(problems, "baseline.base_url is required")
		}
		if c.Scrape.MaxRetries < 0 || c.Scrape.MaxRetries > 10 {
			problems = append(problems, "scrape.max_retries must be between 0 and 10")
		}
		if c.Scrape.HostRate <= 0 {
			problems = append(problems, "scrape.host_rate must be > 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "store":
		// Store checks above are enough for migrate/status.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
