// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the voice engine. All fields are optional in
// the file; missing values come from Default.
type Config struct {
	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path"`   // Local store used when no database_url
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url"`       // Enables cross-instance locking

	// Server
	Port      int    `json:"port,omitempty" yaml:"port" validate:"min=1,max=65535"`
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format" validate:"oneof=text json"`

	// Extraction
	MinWords int `json:"min_words,omitempty" yaml:"min_words" validate:"min=1"`
	MaxWords int `json:"max_words,omitempty" yaml:"max_words" validate:"gtefield=MinWords"`

	// Aggregation and readiness
	MaxDocumentShare  float64        `json:"max_document_share,omitempty" yaml:"max_document_share" validate:"gt=0,lte=1"`
	StudioThresholds  map[string]int `json:"studio_thresholds,omitempty" yaml:"studio_thresholds" validate:"dive,keys,required,endkeys,min=0,max=100"`
	DefaultThreshold  int            `json:"default_threshold,omitempty" yaml:"default_threshold" validate:"min=0,max=100"`
	RetryAttempts     int            `json:"retry_attempts,omitempty" yaml:"retry_attempts" validate:"min=1,max=20"`
	RetryBaseDelay    Duration       `json:"retry_base_delay,omitempty" yaml:"retry_base_delay"`
	QueueWorkers      int            `json:"queue_workers,omitempty" yaml:"queue_workers" validate:"min=1,max=64"`
	QueueSize         int            `json:"queue_size,omitempty" yaml:"queue_size" validate:"min=1"`
	CacheTTL          Duration       `json:"cache_ttl,omitempty" yaml:"cache_ttl"`
	GeminiAPIKey      string         `json:"gemini_api_key,omitempty" yaml:"gemini_api_key"`
	RewriteTolerance  float64        `json:"rewrite_tolerance,omitempty" yaml:"rewrite_tolerance" validate:"gte=0,lte=1"`
	RequestsPerMinute int            `json:"requests_per_minute,omitempty" yaml:"requests_per_minute" validate:"min=0"`
}

// Duration is a time.Duration written as "250ms" or "5m" in config files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "250ms" strings or integer nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// UnmarshalYAML accepts "250ms" strings.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		SQLitePath:       "voice.db",
		Port:             8080,
		LogLevel:         "info",
		LogFormat:        "text",
		MinWords:         100,
		MaxWords:         20000,
		MaxDocumentShare: 0.4,
		StudioThresholds: map[string]int{
			"career":   30,
			"social":   25,
			"creative": 45,
			"business": 50,
			"academic": 60,
		},
		DefaultThreshold:  50,
		RetryAttempts:     5,
		RetryBaseDelay:    Duration(25 * time.Millisecond),
		QueueWorkers:      4,
		QueueSize:         256,
		CacheTTL:          Duration(5 * time.Minute),
		RewriteTolerance:  0.3,
		RequestsPerMinute: 120,
	}
}

// LoadConfig loads configuration from a JSON or YAML file on top of Default.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load returns Default, overlaid by the file at path (when non-empty) and then
// by environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"DATABASE_URL":   &c.DatabaseURL,
		"SQLITE_PATH":    &c.SQLitePath,
		"REDIS_URL":      &c.RedisURL,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
		"GEMINI_API_KEY": &c.GeminiAPIKey,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":                &c.Port,
		"VOICE_MIN_WORDS":     &c.MinWords,
		"VOICE_MAX_WORDS":     &c.MaxWords,
		"VOICE_THRESHOLD":     &c.DefaultThreshold,
		"VOICE_RETRIES":       &c.RetryAttempts,
		"VOICE_QUEUE_WORKERS": &c.QueueWorkers,
		"VOICE_QUEUE_SIZE":    &c.QueueSize,
		"REQUESTS_PER_MINUTE": &c.RequestsPerMinute,
	}
	for key, dst := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer: %w", key, err)
		}
		*dst = n
	}

	if v := getenv("VOICE_MAX_DOCUMENT_SHARE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config error: VOICE_MAX_DOCUMENT_SHARE must be a number: %w", err)
		}
		c.MaxDocumentShare = f
	}
	if v := getenv("VOICE_CACHE_TTL"); v != "" {
		if err := c.CacheTTL.parse(v); err != nil {
			return fmt.Errorf("config error: VOICE_CACHE_TTL: %w", err)
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("config error: 'retry_base_delay' must be non-negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MinWords == 0 {
		result.MinWords = defaults.MinWords
	}
	if result.MaxWords == 0 {
		result.MaxWords = defaults.MaxWords
	}
	if result.DefaultThreshold == 0 {
		result.DefaultThreshold = defaults.DefaultThreshold
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = defaults.RetryAttempts
	}
	if result.QueueWorkers == 0 {
		result.QueueWorkers = defaults.QueueWorkers
	}
	if result.QueueSize == 0 {
		result.QueueSize = defaults.QueueSize
	}
	if result.RequestsPerMinute == 0 {
		result.RequestsPerMinute = defaults.RequestsPerMinute
	}

	if result.MaxDocumentShare == 0 {
		result.MaxDocumentShare = defaults.MaxDocumentShare
	}
	if result.RewriteTolerance == 0 {
		result.RewriteTolerance = defaults.RewriteTolerance
	}
	if result.RetryBaseDelay == 0 {
		result.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}

	// Studio thresholds merge key by key
	if len(defaults.StudioThresholds) > 0 {
		merged := make(map[string]int, len(defaults.StudioThresholds)+len(result.StudioThresholds))
		for k, v := range defaults.StudioThresholds {
			merged[k] = v
		}
		for k, v := range result.StudioThresholds {
			merged[k] = v
		}
		result.StudioThresholds = merged
	}

	return result
}
