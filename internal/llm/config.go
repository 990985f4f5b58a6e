// Package llm wraps the text generator used to rewrite content in a user's voice.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for quick checks and short rewrites
	TierLite ModelTier = "lite"
	// TierStandard is for ordinary rewrites
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long or stylistically demanding rewrites
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the generator
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Temperature controls sampling. Rewrites need some latitude to sound natural.
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.4,
	}
}

// GetModel returns the model name for a given tier, falling back to
// standard and then lite.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of the Config with model set for tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return next
}

// TierForWords picks a tier by input size.
func TierForWords(words int) ModelTier {
	switch {
	case words <= 60:
		return TierLite
	case words <= 600:
		return TierStandard
	default:
		return TierAdvanced
	}
}
