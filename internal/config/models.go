package config

import (
	"os"
	"time"
)

// RelayConfig represents the relay server configuration
type RelayConfig struct {
	ListenAddress   string
	Provider        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	UpstreamTimeout time.Duration
	MaxPreviewSize  int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ClassifierConfig represents the classification settings of the CLI
type ClassifierConfig struct {
	Method      string
	RelayURL    string
	AIKeywords  []string
	AIDelay     time.Duration
	HTTPTimeout time.Duration
}

// StorageConfig selects the key-value store backend
type StorageConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// CacheConfig represents the verdict cache settings
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
}

// SMTPConfig represents the SMTP responder settings
type SMTPConfig struct {
	Address  string
	Username string
	Password string
	From     string
	To       []string
}

// AutomationConfig selects how automated responses are delivered
type AutomationConfig struct {
	Responder string
	SMTP      SMTPConfig
}

// GetRelay returns the relay configuration
func (c *Config) GetRelay() (RelayConfig, error) {
	cfg := RelayConfig{
		ListenAddress:  c.GetString("relay.listen_address"),
		Provider:       c.GetString("relay.provider"),
		MaxPreviewSize: c.GetInt("relay.max_preview_size"),
	}
	var err error
	if cfg.ReadTimeout, err = c.GetDuration("relay.read_timeout"); err != nil {
		return cfg, err
	}
	if cfg.WriteTimeout, err = c.GetDuration("relay.write_timeout"); err != nil {
		return cfg, err
	}
	if cfg.UpstreamTimeout, err = c.GetDuration("relay.upstream_timeout"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() (ClassifierConfig, error) {
	cfg := ClassifierConfig{
		Method:     c.GetString("classifier.method"),
		RelayURL:   c.GetString("classifier.relay_url"),
		AIKeywords: c.GetStringSlice("classifier.ai_keywords"),
	}
	var err error
	if cfg.AIDelay, err = c.GetDuration("classifier.ai_delay"); err != nil {
		return cfg, err
	}
	if cfg.HTTPTimeout, err = c.GetDuration("classifier.http_timeout"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetStorage returns the storage configuration with the SQLite path expanded
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type:       c.GetString("storage.type"),
		SQLitePath: os.ExpandEnv(c.GetString("storage.sqlite_path")),
		MySQLDSN:   c.GetString("storage.mysql_dsn"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	cfg := CacheConfig{
		Enabled: c.GetBool("cache.enabled"),
		Type:    c.GetString("cache.type"),
	}
	var err error
	if cfg.TTL, err = c.GetDuration("cache.ttl"); err != nil {
		return cfg, err
	}
	if cfg.CleanupFrequency, err = c.GetDuration("cache.cleanup_frequency"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetAutomation returns the automation configuration
func (c *Config) GetAutomation() AutomationConfig {
	return AutomationConfig{
		Responder: c.GetString("automation.responder"),
		SMTP: SMTPConfig{
			Address:  c.GetString("automation.smtp.address"),
			Username: c.GetString("automation.smtp.username"),
			Password: c.GetString("automation.smtp.password"),
			From:     c.GetString("automation.smtp.from"),
			To:       c.GetStringSlice("automation.smtp.to"),
		},
	}
}
