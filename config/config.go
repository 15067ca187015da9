// Package config loads service configuration from defaults, an optional YAML
// file and the process environment, in that order of precedence.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"cinemuse/internal/validation"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CINEMUSE_CONFIG"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{"config.yaml", "config.yml", "/etc/cinemuse/config.yaml"}

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Gemini  GeminiConfig  `koanf:"gemini"`
	TMDB    TMDBConfig    `koanf:"tmdb"`
	Cache   CacheConfig   `koanf:"cache"`
	Session SessionConfig `koanf:"session"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Addr               string        `koanf:"addr" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute" validate:"gte=0"`
	RateLimitBurst     int           `koanf:"rate_limit_burst" validate:"gte=0"`
	CORSOrigins        []string      `koanf:"cors_origins"`
}

// GeminiConfig configures the title suggestion client.
type GeminiConfig struct {
	// APIKey is the language model credential. Empty is allowed at load time; the
	// recommendation endpoints then answer 500.
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model" validate:"required"`
	Transport   string        `koanf:"transport" validate:"oneof=rest sdk"`
	Output      string        `koanf:"output" validate:"oneof=schema text"`
	Auth        string        `koanf:"auth" validate:"oneof=query bearer"`
	BaseURL     string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	Temperature float64       `koanf:"temperature" validate:"gte=0,lte=2"`
	MinInterval time.Duration `koanf:"min_interval" validate:"gte=0"`
}

// TMDBConfig configures the metadata enrichment client.
type TMDBConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	ImageBaseURL string        `koanf:"image_base_url" validate:"required,url"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinInterval  time.Duration `koanf:"min_interval" validate:"gte=0"`
}

// CacheConfig configures the metadata file cache. TTLHours of 0 disables it.
type CacheConfig struct {
	Dir      string `koanf:"dir"`
	TTLHours int    `koanf:"ttl_hours" validate:"gte=0"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `koanf:"idle_ttl" validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

type LogConfig struct {
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
	Compress   bool   `koanf:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":8080",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       90 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			RateLimitPerMinute: 20,
			RateLimitBurst:     5,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Transport:   "rest",
			Output:      "schema",
			Auth:        "query",
			Timeout:     30 * time.Second,
			Temperature: 0.7,
			MinInterval: 100 * time.Millisecond,
		},
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      10 * time.Second,
			MinInterval:  25 * time.Millisecond,
		},
		Cache: CacheConfig{
			Dir:      "cache/metadata",
			TTLHours: 24,
		},
		Session: SessionConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads configuration from the default sources.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile reads configuration with path as the YAML layer. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		log.Printf("[config] loaded %s", path)
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := applyRequestTimeout(k); err != nil {
		return nil, err
	}

	if raw, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitList(raw)); err != nil {
			return nil, fmt.Errorf("parse server.cors_origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	applyCredentialFallbacks(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Missing credentials are not an error here.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LLMConfigured reports whether the language model credential is present.
func (c *Config) LLMConfigured() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// MetadataConfigured reports whether the metadata service key is present.
func (c *Config) MetadataConfigured() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

var envKeys = map[string]string{
	"gemini_api_key":        "gemini.api_key",
	"gemini_model":          "gemini.model",
	"gemini_transport":      "gemini.transport",
	"gemini_output":         "gemini.output",
	"gemini_auth":           "gemini.auth",
	"gemini_base_url":       "gemini.base_url",
	"gemini_timeout":        "gemini.timeout",
	"tmdb_api_key":          "tmdb.api_key",
	"tmdb_base_url":         "tmdb.base_url",
	"tmdb_image_base_url":   "tmdb.image_base_url",
	"tmdb_timeout":          "tmdb.timeout",
	"server_addr":           "server.addr",
	"rate_limit_per_minute": "server.rate_limit_per_minute",
	"cors_origins":          "server.cors_origins",
	"cache_dir":             "cache.dir",
	"cache_ttl_hours":       "cache.ttl_hours",
	"session_idle_ttl":      "session.idle_ttl",
	"log_file":              "log.file",
}

// envTransform maps known environment variables onto config keys. Unknown
// variables map to "" and are skipped.
func envTransform(key string) string {
	return envKeys[strings.ToLower(key)]
}

// RequestTimeoutEnvVar sets both upstream timeouts. GEMINI_TIMEOUT and
// TMDB_TIMEOUT take precedence for their own service.
const RequestTimeoutEnvVar = "REQUEST_TIMEOUT"

func applyRequestTimeout(k *koanf.Koanf) error {
	raw := strings.TrimSpace(os.Getenv(RequestTimeoutEnvVar))
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", RequestTimeoutEnvVar, err)
	}
	overrides := map[string]string{
		"gemini.timeout": "GEMINI_TIMEOUT",
		"tmdb.timeout":   "TMDB_TIMEOUT",
	}
	for key, specific := range overrides {
		if strings.TrimSpace(os.Getenv(specific)) != "" {
			continue
		}
		if err := k.Set(key, d); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// Older deployments set the language model key as API_KEY or GOOGLE_API_KEY.
var credentialFallbacks = []string{"API_KEY", "GOOGLE_API_KEY"}

func applyCredentialFallbacks(cfg *Config) {
	if strings.TrimSpace(cfg.Gemini.APIKey) != "" {
		return
	}
	for _, name := range credentialFallbacks {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			cfg.Gemini.APIKey = v
			return
		}
	}
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		log.Printf("[config] %s=%s not found, ignoring", PathEnvVar, p)
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
