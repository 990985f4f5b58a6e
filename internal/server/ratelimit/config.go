package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the configuration for a per-client budget of
// requestsPerMinute. A non-positive budget disables limiting.
func NewConfig(requestsPerMinute int) *Config {
	if requestsPerMinute <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    requestsPerMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(requestsPerMinute),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits derived from the
// per-client budget. Profile writes cost the most and get a quarter of it.
func DefaultEndpointConfigs(requestsPerMinute int) []EndpointConfig {
	writes := max(requestsPerMinute/4, 1)
	extracts := max(requestsPerMinute/2, 1)
	return []EndpointConfig{
		// Tier 1: profile writes
		{Path: "/users/", Method: "POST", Limit: writes, Window: time.Minute, Burst: min(writes, 10)},
		{Path: "/users/", Method: "DELETE", Limit: writes, Window: time.Minute, Burst: min(writes, 10)},

		// Tier 2: stateless extraction
		{Path: "/fingerprints", Method: "POST", Limit: extracts, Window: time.Minute, Burst: min(extracts, 20)},

		// Tier 3: reads use the default limit
		// Tier 4: health and metrics are unlimited, see MatchEndpoint
	}
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		return &EndpointConfig{Limit: 0}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
