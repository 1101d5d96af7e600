// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Rewrite RewriteConfig `mapstructure:"rewrite"`
	DB      DBConfig      `mapstructure:"db"`
	Output  OutputConfig  `mapstructure:"output"`
	Export  ExportConfig  `mapstructure:"export"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScraperConfig governs coordinator and fetch pipeline behavior.
type ScraperConfig struct {
	Concurrency  int      `mapstructure:"concurrency"`
	UserAgent    string   `mapstructure:"user_agent"`
	DelaySeconds float64  `mapstructure:"delay_seconds"`
	URLs         []string `mapstructure:"urls"`
}

// HTTPConfig configures the fetch client retry behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxRetries     int `mapstructure:"max_retries"`
}

// RewriteConfig points at the external image-rewrite service.
type RewriteConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Referer        string `mapstructure:"referer"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// OutputConfig sets the directory for per-URL HTML files.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExportConfig holds WXR feed export settings.
type ExportConfig struct {
	BasePostID         int    `mapstructure:"base_post_id"`
	ChannelTitle       string `mapstructure:"channel_title"`
	ChannelLink        string `mapstructure:"channel_link"`
	ChannelDescription string `mapstructure:"channel_description"`
	AuthorLogin        string `mapstructure:"author_login"`
	AuthorEmail        string `mapstructure:"author_email"`
	Category           string `mapstructure:"category"`
}

// MetricsConfig controls the Prometheus debug listener. An empty
// listen address disables it.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.concurrency", 15)
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("scraper.delay_seconds", 1.5)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("rewrite.enabled", true)
	v.SetDefault("rewrite.endpoint", "https://gateway.galang.eu.org/api/image/compress")
	v.SetDefault("rewrite.timeout_seconds", 20)
	v.SetDefault("rewrite.referer", "https://gateway.galang.eu.org/")
	v.SetDefault("db.table", "scraped_articles")
	v.SetDefault("db.max_conns", 20)
	v.SetDefault("output.dir", "output_html")
	v.SetDefault("export.base_post_id", 40670)
	v.SetDefault("export.channel_title", "cara")
	v.SetDefault("export.channel_link", "https://cnc.galang.eu.org")
	v.SetDefault("export.channel_description", "cara")
	v.SetDefault("export.author_login", "Galang")
	v.SetDefault("export.category", "cara")
	v.SetDefault("metrics.listen_addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.Rewrite.Enabled && c.Rewrite.Endpoint == "" {
		return fmt.Errorf("rewrite.endpoint must be set when rewrite is enabled")
	}
	if c.Export.BasePostID < 0 {
		return fmt.Errorf("export.base_post_id must be >= 0")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// FetchDelay is the base inter-retry delay.
func (c Config) FetchDelay() time.Duration {
	return time.Duration(c.Scraper.DelaySeconds * float64(time.Second))
}

// RewriteTimeout converts the rewrite timeout into a duration.
func (c Config) RewriteTimeout() time.Duration {
	return time.Duration(c.Rewrite.TimeoutSeconds) * time.Second
}
