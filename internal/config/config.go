package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// DefaultLanguage is used when neither the request nor the saved
	// preferences name a language.
	DefaultLanguage string `yaml:"default_language"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `yaml:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `yaml:"disabled_tools,omitempty"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider          string   `yaml:"provider"` // "openai" or "gemini"
	Model             string   `yaml:"model"`
	BaseURL           string   `yaml:"base_url"`
	Temperature       *float64 `yaml:"temperature"` // nil means unset; 0 is a valid setting
	SummaryMaxTokens  int      `yaml:"summary_max_tokens"`
	FollowUpMaxTokens int      `yaml:"follow_up_max_tokens"`
}

// SearchConfig tunes the video and article providers.
type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

// CacheConfig controls the provider result cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	RedisURL   string        `yaml:"redis_url"`
}

// RateLimitConfig limits /api/ requests per client address.
// RequestsPerMinute of 0 disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// DefaultTemperature is the sampling temperature when llm.temperature is unset.
const DefaultTemperature = 0.7

// LLM provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		DefaultLanguage: "en",
		LogLevel:        "info",
		LogFormat:       "text",
		LLM: LLMConfig{
			Provider:          ProviderOpenAI,
			BaseURL:           "https://api.openai.com/v1",
			Temperature:       ptr(DefaultTemperature),
			SummaryMaxTokens:  1500,
			FollowUpMaxTokens: 800,
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Cache: CacheConfig{
			TTL:        15 * time.Minute,
			MaxEntries: 1000,
		},
		HTTPTimeout: 60 * time.Second,
	}
}

// ModelOrDefault returns the configured model, or the provider's default.
func (c LLMConfig) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "gpt-3.5-turbo"
}

// TemperatureOrDefault returns the configured temperature, or
// DefaultTemperature when none is set.
func (c LLMConfig) TemperatureOrDefault() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return DefaultTemperature
}

func ptr[T any](v T) *T { return &v }

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// Load loads configuration from baseDir/config.yaml.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.howto.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.yaml"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return merged, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be one of: %s, %s (got %q)", ProviderOpenAI, ProviderGemini, c.LLM.Provider)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		return fmt.Errorf("search.max_results must be between 1 and 10 (got %d)", c.Search.MaxResults)
	}
	return nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Server.Bind = pickString(overlay.Server.Bind, base.Server.Bind)
	result.Server.Port = pickInt(overlay.Server.Port, base.Server.Port)
	result.DefaultLanguage = pickString(overlay.DefaultLanguage, base.DefaultLanguage)
	result.LogLevel = pickString(overlay.LogLevel, base.LogLevel)
	result.LogFormat = pickString(overlay.LogFormat, base.LogFormat)

	result.LLM.Provider = pickString(strings.ToLower(overlay.LLM.Provider), base.LLM.Provider)
	result.LLM.Model = pickString(overlay.LLM.Model, base.LLM.Model)
	result.LLM.BaseURL = pickString(overlay.LLM.BaseURL, base.LLM.BaseURL)
	result.LLM.Temperature = base.LLM.Temperature
	if overlay.LLM.Temperature != nil {
		result.LLM.Temperature = overlay.LLM.Temperature
	}
	result.LLM.SummaryMaxTokens = pickInt(overlay.LLM.SummaryMaxTokens, base.LLM.SummaryMaxTokens)
	result.LLM.FollowUpMaxTokens = pickInt(overlay.LLM.FollowUpMaxTokens, base.LLM.FollowUpMaxTokens)

	result.Search.MaxResults = pickInt(overlay.Search.MaxResults, base.Search.MaxResults)

	// Booleans: overlay wins if true, else base
	result.Cache.Enabled = base.Cache.Enabled || overlay.Cache.Enabled
	result.Cache.TTL = overlay.Cache.TTL
	if result.Cache.TTL == 0 {
		result.Cache.TTL = base.Cache.TTL
	}
	result.Cache.MaxEntries = pickInt(overlay.Cache.MaxEntries, base.Cache.MaxEntries)
	result.Cache.RedisURL = pickString(overlay.Cache.RedisURL, base.Cache.RedisURL)

	result.RateLimit.RequestsPerMinute = pickInt(overlay.RateLimit.RequestsPerMinute, base.RateLimit.RequestsPerMinute)
	result.RateLimit.Burst = pickInt(overlay.RateLimit.Burst, base.RateLimit.Burst)

	result.HTTPTimeout = overlay.HTTPTimeout
	if result.HTTPTimeout == 0 {
		result.HTTPTimeout = base.HTTPTimeout
	}

	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// LoadEnvFiles loads .env files into the process environment.
// Existing variables are never overridden; missing files are ignored.
func LoadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}
