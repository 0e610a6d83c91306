// Package config loads process configuration for ledgersync.
//
// Values come from built-in defaults, an optional TOML or YAML file and
// LEDGERSYNC_ environment variables, in increasing order of precedence.
// Nested keys map to env names with dots replaced by underscores, so
// providers.openai.token is read from LEDGERSYNC_PROVIDERS_OPENAI_TOKEN.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/ledgersync/ai"
	"github.com/poiesic/ledgersync/core"
	"github.com/spf13/viper"
)

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"

	envPrefix  = "LEDGERSYNC"
	envConfig  = "LEDGERSYNC_CONFIG"
	configName = "config"
)

// Config holds application configuration.
type Config struct {
	Storage   StorageConfig
	Cache     CacheConfig
	Providers ProvidersConfig
	Reconcile ReconcileConfig
}

// StorageConfig selects the record and audit store.
type StorageConfig struct {
	Driver string
	Path   string
}

// CacheConfig selects the classification cache store.
type CacheConfig struct {
	Driver        string
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// BackendConfig holds one provider's connection settings.
type BackendConfig struct {
	Host  string
	Model string
	Token string
}

// ProvidersConfig holds provider settings.
type ProvidersConfig struct {
	Default   string
	OpenAI    BackendConfig `mapstructure:"openai"`
	Anthropic BackendConfig
	Ollama    BackendConfig
}

// ReconcileConfig tunes the coordinator.
type ReconcileConfig struct {
	Concurrency   int
	Enrich        bool
	ChunkSize     int           `mapstructure:"chunk_size"`
	RunTimeout    time.Duration `mapstructure:"run_timeout"`
	EnrichTimeout time.Duration `mapstructure:"enrich_timeout"`
	CompareFields []string      `mapstructure:"compare_fields"`
}

// Load reads configuration. An empty path falls back to $LEDGERSYNC_CONFIG
// and then to config.{toml,yaml} in ~/.config/ledgersync, both optional.
// A path given explicitly must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv(envConfig)
		explicit = path != ""
	}
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "ledgersync"))
		v.SetConfigName(configName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(homeDir(), ".local", "share", "ledgersync")

	v.SetDefault("storage.driver", DriverBadger)
	v.SetDefault("storage.path", filepath.Join(dataDir, "db"))

	v.SetDefault("cache.driver", DriverBadger)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.redis_addr", "127.0.0.1:6379")
	v.SetDefault("cache.sweep_interval", "1h")

	v.SetDefault("providers.default", ai.PrimaryProvider)
	v.SetDefault("providers.openai.host", "http://localhost:11434/v1")
	v.SetDefault("providers.openai.model", "qwen2.5:3b")
	v.SetDefault("providers.openai.token", "")
	v.SetDefault("providers.anthropic.host", "")
	v.SetDefault("providers.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("providers.anthropic.token", "")
	v.SetDefault("providers.ollama.host", "")
	v.SetDefault("providers.ollama.model", "qwen2.5:3b")

	v.SetDefault("reconcile.chunk_size", 100)
	v.SetDefault("reconcile.concurrency", 8)
	v.SetDefault("reconcile.run_timeout", "10m")
	v.SetDefault("reconcile.enrich_timeout", "90s")
	v.SetDefault("reconcile.enrich", false)
	v.SetDefault("reconcile.compare_fields", []string{})
}

// Validate checks driver names and numeric ranges.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return errors.New("config: storage.path is required")
	}
	switch c.Cache.Driver {
	case DriverBadger, DriverRedis:
	default:
		return fmt.Errorf("config: unknown cache.driver %q", c.Cache.Driver)
	}
	if c.Cache.Driver == DriverBadger && c.Storage.Driver != DriverBadger {
		return errors.New("config: cache.driver badger requires storage.driver badger")
	}
	if c.Reconcile.ChunkSize < 1 {
		return errors.New("config: reconcile.chunk_size must be positive")
	}
	if _, err := c.Fields(); err != nil {
		return fmt.Errorf("config: reconcile.compare_fields: %w", err)
	}
	return nil
}

// Fields returns the parsed compare fields, or core.DefaultCompareFields
// when none are configured.
func (c Config) Fields() ([]core.Field, error) {
	if len(c.Reconcile.CompareFields) == 0 {
		return core.DefaultCompareFields, nil
	}
	return core.ParseFields(c.Reconcile.CompareFields)
}

// AI converts the provider section into an ai.Config.
func (c Config) AI() *ai.Config {
	p := c.Providers
	return ai.NewConfig(
		ai.WithDefaultProvider(p.Default),
		ai.WithOpenAI(p.OpenAI.Host, p.OpenAI.Model, p.OpenAI.Token),
		ai.WithAnthropic(p.Anthropic.Host, p.Anthropic.Model, p.Anthropic.Token),
		ai.WithOllama(p.Ollama.Host, p.Ollama.Model),
	)
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
