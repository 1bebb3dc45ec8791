package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "PRIORITIZER"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. A non-empty path selects an
// explicit config file instead of the search paths.
func New(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/llm-inbox-prioritizer/")
		v.AddConfigPath("$HOME/.llm-inbox-prioritizer")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Relay defaults
	v.SetDefault("relay.listen_address", "0.0.0.0:3001")
	v.SetDefault("relay.provider", "gemini")
	v.SetDefault("relay.read_timeout", "30s")
	v.SetDefault("relay.write_timeout", "60s")
	v.SetDefault("relay.upstream_timeout", "45s")
	v.SetDefault("relay.max_preview_size", 2000)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 100)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 100)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 100)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Classifier defaults
	v.SetDefault("classifier.method", "rule")
	v.SetDefault("classifier.relay_url", "http://localhost:3001/check-high-priority")
	v.SetDefault("classifier.ai_keywords", []string{"offer", "job", "urgent", "important"})
	v.SetDefault("classifier.ai_delay", "5s")
	v.SetDefault("classifier.http_timeout", "60s")

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.sqlite_path", "$HOME/.llm-inbox-prioritizer/store.db")
	v.SetDefault("storage.mysql_dsn", "user:password@tcp(localhost:3306)/prioritizer")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")

	// Automation defaults
	v.SetDefault("automation.responder", "view")
	v.SetDefault("automation.smtp.address", "localhost:25")
	v.SetDefault("automation.smtp.username", "")
	v.SetDefault("automation.smtp.password", "")
	v.SetDefault("automation.smtp.from", "prioritizer@localhost")
	v.SetDefault("automation.smtp.to", []string{})

	// View defaults
	v.SetDefault("view.container_poll_interval", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// Set overrides a value, used for command line flags
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// ConfigFile returns the path of the loaded config file, if any
func (c *Config) ConfigFile() string {
	return c.v.ConfigFileUsed()
}

// Watch reloads the config file on change and calls fn afterwards.
// It does nothing when no file was loaded.
func (c *Config) Watch(fn func(fsnotify.Event)) {
	if c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(fn)
	c.v.WatchConfig()
}
