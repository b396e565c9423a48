package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"PricePulse/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL     string `yaml:"base_url"`
		AssetID     string `yaml:"asset_id"`
		HistoryDays int    `yaml:"history_days"`
	} `yaml:"data_source"`
	Refresh struct {
		IntervalSeconds int    `yaml:"interval_seconds"`
		HistoryCron     string `yaml:"history_cron"`
	} `yaml:"refresh"`
	DefaultCurrency string `yaml:"default_currency"`
	Database        struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PRICE_API_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("ASSET_ID"); v != "" {
		cfg.DataSource.AssetID = v
	}
	if v := os.Getenv("REFRESH_INTERVAL_SECONDS"); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil {
			cfg.Refresh.IntervalSeconds = seconds
		}
	}
	if v := os.Getenv("HISTORY_CRON"); v != "" {
		cfg.Refresh.HistoryCron = v
	}
	if v := os.Getenv("DEFAULT_CURRENCY"); v != "" {
		cfg.DefaultCurrency = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.DataSource.AssetID == "" {
		cfg.DataSource.AssetID = "bitcoin"
	}
	if cfg.DataSource.HistoryDays == 0 {
		cfg.DataSource.HistoryDays = 14
	}
	if cfg.Refresh.IntervalSeconds == 0 {
		cfg.Refresh.IntervalSeconds = 60
	}
	if cfg.Refresh.HistoryCron == "" {
		// Shortly after midnight, once the previous day's candle has closed.
		cfg.Refresh.HistoryCron = "0 5 0 * * *"
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = string(model.DefaultCurrency())
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required")
	}
	if c.DataSource.AssetID == "" {
		return fmt.Errorf("data_source.asset_id is required")
	}
	if c.DataSource.HistoryDays <= 0 {
		return fmt.Errorf("data_source.history_days must be positive")
	}
	if c.Refresh.IntervalSeconds <= 0 {
		return fmt.Errorf("refresh.interval_seconds must be positive")
	}
	if _, ok := model.ParseCurrency(c.DefaultCurrency); !ok {
		return fmt.Errorf("default_currency %q is not a supported currency", c.DefaultCurrency)
	}
	return nil
}

// Currency returns the validated default currency.
func (c *Config) Currency() model.CurrencyCode {
	cur, _ := model.ParseCurrency(c.DefaultCurrency)
	return cur
}
