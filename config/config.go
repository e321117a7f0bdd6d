// Package config loads and validates patscan configuration via Viper.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/http"
	"github.com/mrtoronto/patscan/scrape"
)

// EnvPrefix prefixes environment overrides, e.g. PATSCAN_SCRAPE_CONCURRENCY.
const EnvPrefix = "PATSCAN"

// Config captures every setting loaded via Viper.
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Browser BrowserConfig `mapstructure:"browser"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
}

// SearchConfig holds the URL templates of the patent search.
// {keyword} and {ordinal} are expanded per request.
type SearchConfig struct {
	URL         string `mapstructure:"url"`
	DocumentURL string `mapstructure:"document_url"`
}

// RetryConfig controls page retrieval retries.
type RetryConfig struct {
	Delays []time.Duration `mapstructure:"delays"`
	Settle time.Duration   `mapstructure:"settle"`
}

// ScrapeConfig controls the batch pipeline.
type ScrapeConfig struct {
	Concurrency int `mapstructure:"concurrency"`

	// Rate is the navigations per second allowed per host. Zero disables
	// pacing.
	Rate float64 `mapstructure:"rate"`
}

// BrowserConfig configures headless Chrome.
type BrowserConfig struct {
	Headless bool   `mapstructure:"headless"`
	Bin      string `mapstructure:"bin"`
}

// HTTPConfig configures plain HTTP requests.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load builds a Config from defaults, the optional file at path and the
// environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, patscan.Errorf(patscan.EINVALID, "read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, patscan.Errorf(patscan.EINVALID, "unmarshal config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.url", http.DefaultSearchURL)
	v.SetDefault("search.document_url", http.DefaultDocumentURL)
	v.SetDefault("retry.delays", scrape.DefaultRetryPolicy().Delays)
	v.SetDefault("retry.settle", scrape.DefaultSettle)
	v.SetDefault("scrape.concurrency", 1)
	v.SetDefault("scrape.rate", 1.0)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.bin", "")
	v.SetDefault("http.timeout", http.DefaultTimeout)
	v.SetDefault("log.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if !strings.Contains(c.Search.URL, "{keyword}") {
		return patscan.Errorf(patscan.EINVALID, "search.url must contain {keyword}")
	}
	if !strings.Contains(c.Search.DocumentURL, "{ordinal}") {
		return patscan.Errorf(patscan.EINVALID, "search.document_url must contain {ordinal}")
	}
	for _, d := range c.Retry.Delays {
		if d < 0 {
			return patscan.Errorf(patscan.EINVALID, "retry.delays must be >= 0")
		}
	}
	if c.Retry.Settle < 0 {
		return patscan.Errorf(patscan.EINVALID, "retry.settle must be >= 0")
	}
	if c.Scrape.Concurrency <= 0 {
		return patscan.Errorf(patscan.EINVALID, "scrape.concurrency must be > 0")
	}
	if c.Scrape.Rate < 0 {
		return patscan.Errorf(patscan.EINVALID, "scrape.rate must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return patscan.Errorf(patscan.EINVALID, "http.timeout must be > 0")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// RetryPolicy returns the configured retry policy.
func (c Config) RetryPolicy() scrape.RetryPolicy {
	return scrape.RetryPolicy{Delays: c.Retry.Delays}
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, patscan.Errorf(patscan.EINVALID, "log.level: %v", err)
	}
	return level, nil
}

// String summarizes the settings that shape a run.
func (c Config) String() string {
	return fmt.Sprintf("concurrency=%d rate=%g retries=%d settle=%s headless=%t",
		c.Scrape.Concurrency, c.Scrape.Rate, len(c.Retry.Delays), c.Retry.Settle, c.Browser.Headless)
}
