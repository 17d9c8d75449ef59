// Package config handles application configuration using Viper.
// Viper merges YAML files, environment variables, and defaults in priority order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related
// settings; `mapstructure` tags tell Viper how to map YAML/env keys to fields.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	News       NewsConfig       `mapstructure:"news"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Advisor    AdvisorConfig    `mapstructure:"advisor"`
	Storage    StorageConfig    `mapstructure:"storage"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MarketDataConfig points at a Polygon-compatible market-data API.
type MarketDataConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// NewsConfig points at a NewsAPI-compatible news API.
type NewsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type LLMConfig struct {
	// ProviderOrder controls which LLM providers are used and in what order.
	// First provider is primary, rest are fallbacks. Example: ["groq", "anthropic"]
	ProviderOrder []string        `mapstructure:"provider_order"`
	Groq          GroqConfig      `mapstructure:"groq"`
	Anthropic     AnthropicConfig `mapstructure:"anthropic"`
	MaxTokens     int             `mapstructure:"max_tokens"`
	Temperature   float32         `mapstructure:"temperature"`
	RatePerMinute int             `mapstructure:"rate_per_minute"`
}

// GroqConfig configures the Groq completion client. Groq exposes an
// OpenAI-compatible API, so BaseURL can also point at OpenAI itself or any
// compatible inference endpoint.
type GroqConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AdvisorConfig holds the recommendation pipeline settings.
type AdvisorConfig struct {
	// Tickers is the fixed universe the advisor considers.
	Tickers []string `mapstructure:"tickers"`
	// CacheTTLSeconds is how long a computed result is served before recompute.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	// PoolSize bounds the concurrent quote/news fetches per recompute.
	PoolSize int `mapstructure:"pool_size"`
	// NewsPerTicker caps how many articles are fetched per symbol.
	NewsPerTicker int `mapstructure:"news_per_ticker"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults — these apply when neither file nor env provides a value
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("market_data.base_url", "https://api.polygon.io")
	v.SetDefault("news.base_url", "https://newsapi.org/v2")
	v.SetDefault("llm.provider_order", []string{"groq", "anthropic"})
	v.SetDefault("llm.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.groq.model", "llama3-70b-8192")
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 256)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.rate_per_minute", 10)
	v.SetDefault("advisor.tickers", []string{"NVDA", "AAPL", "TSLA", "MSFT", "GOOGL"})
	v.SetDefault("advisor.cache_ttl_seconds", 60)
	v.SetDefault("advisor.pool_size", 5)
	v.SetDefault("advisor.news_per_ticker", 3)
	v.SetDefault("storage.database_path", "./storage/stock-advisor.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" — defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// ADVISOR_ prefix + nested keys: ADVISOR_SERVER_PORT=9090 → server.port=9090
	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheTTL returns the configured TTL as a time.Duration.
func (a AdvisorConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSeconds) * time.Second
}
