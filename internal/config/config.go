package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates the back-office configuration.
type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		IntervalHours int    `yaml:"interval_hours"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address              string `yaml:"address"`
		Password             string `yaml:"password"`
		DB                   int    `yaml:"db"`
		PriceCacheTTLSeconds int    `yaml:"price_cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Pricing struct {
		// VATRate is the configured VAT fraction, e.g. 0.17. Always read
		// from here; call sites never carry a literal rate.
		VATRate float64 `yaml:"vat_rate"`
	} `yaml:"pricing"`

	Calendar struct {
		// FetchWindowDays controls how far around today the booking
		// window is fetched on startup and reloads.
		FetchWindowPastDays   int `yaml:"fetch_window_past_days"`
		FetchWindowFutureDays int `yaml:"fetch_window_future_days"`
		MaxRangeDays          int `yaml:"max_range_days"`
	} `yaml:"calendar"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"ratelimit"`

	Telegram struct {
		Enabled        bool    `yaml:"enabled"`
		BotToken       string  `yaml:"bot_token"`
		ManagerChatIDs []int64 `yaml:"manager_chat_ids"`
	} `yaml:"telegram"`
}

// Load reads the YAML config at path, expanding ${ENV_VAR} placeholders.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Pricing.VATRate < 0 || cfg.Pricing.VATRate >= 1 {
		return nil, fmt.Errorf("pricing.vat_rate %v out of range", cfg.Pricing.VATRate)
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/backoffice.db"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "data/backups"
	}
	if c.Backup.IntervalHours == 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 14
	}
	if c.Pricing.VATRate == 0 {
		c.Pricing.VATRate = 0.17
	}
	if c.Calendar.FetchWindowPastDays == 0 {
		c.Calendar.FetchWindowPastDays = 30
	}
	if c.Calendar.FetchWindowFutureDays == 0 {
		c.Calendar.FetchWindowFutureDays = 365
	}
	if c.Calendar.MaxRangeDays == 0 {
		c.Calendar.MaxRangeDays = 90
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
}

// PriceCacheTTL returns the redis TTL for cached dynamic prices.
func (c *Config) PriceCacheTTL() time.Duration {
	if c.Redis.PriceCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.PriceCacheTTLSeconds) * time.Second
}

// FetchWindow returns the booking window around now.
func (c *Config) FetchWindow(now time.Time) (from, to time.Time) {
	return now.AddDate(0, 0, -c.Calendar.FetchWindowPastDays),
		now.AddDate(0, 0, c.Calendar.FetchWindowFutureDays)
}
