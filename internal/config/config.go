package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL     string            `yaml:"base_url"`
		APIKey      string            `yaml:"api_key"`
		Symbols     map[string]string `yaml:"symbols"`
		IndexSymbol string            `yaml:"index_symbol"`
		IndexSource string            `yaml:"index_source"` // "yahoo" or "rest"
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	History struct {
		File         string `yaml:"file"`
		Limit        int    `yaml:"limit"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"history"`
	Database struct {
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("BREADTH_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("BREADTH_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("HISTORY_FILE"); v != "" {
		cfg.History.File = v
	}
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.Limit = n
		}
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.LookbackDays = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.DataSource.IndexSymbol == "" {
		cfg.DataSource.IndexSymbol = "^NYA"
	}
	if cfg.DataSource.IndexSource == "" {
		cfg.DataSource.IndexSource = "yahoo"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 22 * * 1-5"
	}
	if cfg.History.File == "" {
		cfg.History.File = "data/breadth_history.json"
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = 500
	}
	if cfg.History.LookbackDays == 0 {
		cfg.History.LookbackDays = 95
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/breadth_sentinel.db"
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required")
	}
	switch c.DataSource.IndexSource {
	case "yahoo", "rest":
	default:
		return fmt.Errorf("data_source.index_source must be yahoo or rest, got %q", c.DataSource.IndexSource)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be positive")
	}
	if c.History.LookbackDays < 1 {
		return fmt.Errorf("history.lookback_days must be positive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.DailyCron); err != nil {
		return fmt.Errorf("schedule.daily_cron: %w", err)
	}
	return nil
}

// ValidateService additionally requires the Telegram settings used by the daemon.
func (c *Config) ValidateService() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
