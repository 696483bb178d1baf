package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"IndexHarvester/internal/model"
)

// Today is accepted as fetch.end and resolves to the current UTC date.
const Today = "today"

// Config holds all application configuration.
type Config struct {
	Source struct {
		URL     string `yaml:"url"`
		TableID string `yaml:"table_id"`
		Column  string `yaml:"column"`
	} `yaml:"source"`
	Fetch struct {
		Provider string         `yaml:"provider"`
		Start    string         `yaml:"start"`
		End      string         `yaml:"end"`
		Adjusted *bool          `yaml:"adjusted"`
		Pause    *time.Duration `yaml:"pause"` // nil means 1s; 0s disables the pause
		Timeout  time.Duration  `yaml:"timeout"`
	} `yaml:"fetch"`
	EODHD struct {
		APIKey   string `yaml:"api_key"`
		Exchange string `yaml:"exchange"`
	} `yaml:"eodhd"`
	Output struct {
		Path   string `yaml:"path"`
		Format string `yaml:"format"`
	} `yaml:"output"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy     string `yaml:"proxy"`
	UserAgent string `yaml:"user_agent"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
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

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Environment variable overrides
	if v := os.Getenv("HARVESTER_SOURCE_URL"); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv("HARVESTER_PROVIDER"); v != "" {
		cfg.Fetch.Provider = v
	}
	if v := os.Getenv("HARVESTER_START"); v != "" {
		cfg.Fetch.Start = v
	}
	if v := os.Getenv("HARVESTER_END"); v != "" {
		cfg.Fetch.End = v
	}
	if v := os.Getenv("HARVESTER_PAUSE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Fetch.Pause = &d
		} else {
			log.Printf("[WARN] ignoring HARVESTER_PAUSE=%q: %v", v, err)
		}
	}
	if v := os.Getenv("HARVESTER_OUTPUT"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("HARVESTER_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		cfg.EODHD.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.URL == "" {
		c.Source.URL = "https://en.wikipedia.org/wiki/S%26P_100"
	}
	if c.Source.TableID == "" {
		c.Source.TableID = "constituents"
	}
	if c.Source.Column == "" {
		c.Source.Column = "Symbol"
	}
	if c.Fetch.Provider == "" {
		c.Fetch.Provider = "yahoo"
	}
	if c.Fetch.Start == "" {
		c.Fetch.Start = "2015-01-01"
	}
	if c.Fetch.End == "" {
		c.Fetch.End = "2025-01-01"
	}
	if c.Fetch.Adjusted == nil {
		adjusted := true
		c.Fetch.Adjusted = &adjusted
	}
	if c.Fetch.Pause == nil {
		pause := time.Second
		c.Fetch.Pause = &pause
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.EODHD.Exchange == "" {
		c.EODHD.Exchange = "US"
	}
	if c.Output.Path == "" {
		c.Output.Path = "sp100_daily_close.csv"
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatFromPath(c.Output.Path)
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; IndexHarvester/1.0)"
	}
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		return "parquet"
	}
	return "csv"
}

// Adjust reports whether split/dividend adjusted closes are requested.
func (c *Config) Adjust() bool {
	return c.Fetch.Adjusted == nil || *c.Fetch.Adjusted
}

// PauseDuration returns the wait after each provider request.
func (c *Config) PauseDuration() time.Duration {
	if c.Fetch.Pause == nil {
		return time.Second
	}
	return *c.Fetch.Pause
}

// DateRange resolves fetch.start and fetch.end. End is exclusive.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = parseDate(c.Fetch.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fetch.start: %w", err)
	}
	end, err = parseDate(c.Fetch.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fetch.end: %w", err)
	}
	return start, end, nil
}

// Pinned reports whether the date range is fixed, which makes runs reproducible.
func (c *Config) Pinned() bool {
	return !strings.EqualFold(c.Fetch.Start, Today) && !strings.EqualFold(c.Fetch.End, Today)
}

func parseDate(v string) (time.Time, error) {
	if strings.EqualFold(v, Today) {
		return model.Day(time.Now().UTC()), nil
	}
	return time.Parse(model.DateLayout, v)
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("fetch.start (%s) must be before fetch.end (%s)", c.Fetch.Start, c.Fetch.End)
	}
	if c.PauseDuration() < 0 {
		return fmt.Errorf("fetch.pause must not be negative")
	}
	switch c.Fetch.Provider {
	case "yahoo", "financego":
	case "eodhd":
		if c.EODHD.APIKey == "" {
			return fmt.Errorf("eodhd.api_key is required for provider eodhd")
		}
	default:
		return fmt.Errorf("unknown fetch.provider %q", c.Fetch.Provider)
	}
	switch c.Output.Format {
	case "csv", "parquet":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}
