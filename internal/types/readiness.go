package types

// Tier is a named confidence band.
type Tier string

// Confidence tiers, lowest first.
const (
	TierNotStarted Tier = "not_started"
	TierLearning   Tier = "learning"
	TierDeveloping Tier = "developing"
	TierConfident  Tier = "confident"
	TierMastered   Tier = "mastered"
)

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierNotStarted:
		return "Not Started"
	case TierLearning:
		return "Learning"
	case TierDeveloping:
		return "Developing"
	case TierConfident:
		return "Confident"
	case TierMastered:
		return "Mastered"
	default:
		return "Unknown"
	}
}

// Readiness is the per-consumer gate derived from a profile's confidence.
type Readiness struct {
	IsReady bool   `json:"is_ready"`
	Score   int    `json:"score"`
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}

// GenerationContext is everything a downstream generator may see of a profile.
type GenerationContext struct {
	HasVoiceProfile bool      `json:"has_voice_profile"`
	StudioType      string    `json:"studio_type"`
	Readiness       Readiness `json:"readiness"`
	PromptInjection string    `json:"prompt_injection"`
}
