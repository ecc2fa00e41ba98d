// Package config loads service settings from defaults, an optional YAML file,
// a .env file and CHAINRISK_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHAINRISK_PROVIDER_API_KEY.
const EnvPrefix = "CHAINRISK"

// Config is the full service configuration.
type Config struct {
	HTTPAddr   string          `mapstructure:"http_addr"`
	Log        LogConfig       `mapstructure:"log"`
	Provider   ProviderConfig  `mapstructure:"provider"`
	Advisory   AdvisoryConfig  `mapstructure:"advisory"`
	Collector  CollectorConfig `mapstructure:"collector"`
	Dex        DexConfig       `mapstructure:"dex"`
	Postgres   DatabaseConfig  `mapstructure:"postgres"`
	Clickhouse DatabaseConfig  `mapstructure:"clickhouse"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Monitor    MonitorConfig   `mapstructure:"monitor"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Dev   bool   `mapstructure:"dev"`
}

// ProviderConfig configures the transaction data provider.
type ProviderConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxPages int           `mapstructure:"max_pages"`
}

// AdvisoryConfig configures the text-analysis service. An empty key disables it.
type AdvisoryConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CollectorConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// DexConfig adds routers on top of the built-in registry.
// Entries are "address=venue".
type DexConfig struct {
	ExtraRouters []string `mapstructure:"extra_routers"`
}

// DatabaseConfig holds a DSN. Empty means in-memory storage.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig configures alert publishing. No brokers means alerts are dropped.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MonitorConfig configures the live transaction feed. Empty FeedURL disables it.
type MonitorConfig struct {
	FeedURL string `mapstructure:"feed_url"`
	Chain   string `mapstructure:"chain"`
	Workers int    `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)

	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "https://api.covalenthq.com/v1")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.max_pages", 10)

	v.SetDefault("advisory.api_key", "")
	v.SetDefault("advisory.base_url", "https://api.openai.com/v1")
	v.SetDefault("advisory.model", "gpt-3.5-turbo")
	v.SetDefault("advisory.timeout", 20*time.Second)

	v.SetDefault("collector.concurrency", 4)
	v.SetDefault("dex.extra_routers", []string{})

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("clickhouse.dsn", "")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "chain-risk-alerts")

	v.SetDefault("monitor.feed_url", "")
	v.SetDefault("monitor.chain", "eth-mainnet")
	v.SetDefault("monitor.workers", 8)
}

// Load reads configuration. configPath may be empty. envFiles default to
// ".env"; missing env files are ignored, an explicit missing configPath is not.
func Load(configPath string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	cfg.Dex.ExtraRouters = compact(cfg.Dex.ExtraRouters)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: http_addr is required")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("config: kafka.topic is required when brokers are set")
	}
	if c.Provider.MaxPages < 1 {
		return fmt.Errorf("config: provider.max_pages must be positive, got %d", c.Provider.MaxPages)
	}
	if c.Collector.Concurrency < 1 {
		return fmt.Errorf("config: collector.concurrency must be positive, got %d", c.Collector.Concurrency)
	}
	if _, err := c.Dex.Routers(); err != nil {
		return err
	}
	return nil
}

// Routers parses ExtraRouters into address -> venue.
func (d DexConfig) Routers() (map[string]string, error) {
	routers := make(map[string]string, len(d.ExtraRouters))
	for _, entry := range d.ExtraRouters {
		addr, venue, ok := strings.Cut(entry, "=")
		addr, venue = strings.TrimSpace(addr), strings.TrimSpace(venue)
		if !ok || addr == "" || venue == "" {
			return nil, fmt.Errorf("config: invalid dex router %q, want address=venue", entry)
		}
		routers[addr] = venue
	}
	return routers, nil
}

// compact trims entries and drops empty ones.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
