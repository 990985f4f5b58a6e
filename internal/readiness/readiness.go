// Package readiness decides whether a voice profile is usable by a given kind
// of downstream generator and renders the profile as prompt guidance.
package readiness

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// DefaultThreshold applies to studio types without a configured threshold.
const DefaultThreshold = 50

// DefaultStudioThresholds are the minimum confidence levels per studio type.
var DefaultStudioThresholds = map[string]int{
	"career":   30,
	"social":   25,
	"creative": 45,
	"business": 50,
	"academic": 60,
}

// TierFor maps a confidence level to its tier.
func TierFor(confidence int) types.Tier {
	switch {
	case confidence <= 0:
		return types.TierNotStarted
	case confidence < 30:
		return types.TierLearning
	case confidence < 60:
		return types.TierDeveloping
	case confidence < 85:
		return types.TierConfident
	default:
		return types.TierMastered
	}
}

// Evaluator gates profiles per studio type.
type Evaluator struct {
	thresholds       map[string]int
	defaultThreshold int
	log              *logrus.Entry
}

// NewEvaluator creates an evaluator. A nil thresholds map uses
// DefaultStudioThresholds and a non-positive default uses DefaultThreshold.
func NewEvaluator(thresholds map[string]int, defaultThreshold int, log *logrus.Entry) *Evaluator {
	if thresholds == nil {
		thresholds = DefaultStudioThresholds
	}
	normalized := make(map[string]int, len(thresholds))
	for studio, v := range thresholds {
		normalized[normalizeStudio(studio)] = v
	}
	if defaultThreshold <= 0 {
		defaultThreshold = DefaultThreshold
	}
	if log == nil {
		log = logrus.WithField("component", "readiness")
	}
	return &Evaluator{thresholds: normalized, defaultThreshold: defaultThreshold, log: log}
}

// Threshold returns the minimum confidence for a studio type and whether the
// studio type is known.
func (e *Evaluator) Threshold(studio string) (int, bool) {
	v, ok := e.thresholds[normalizeStudio(studio)]
	if !ok {
		return e.defaultThreshold, false
	}
	return v, true
}

// Evaluate computes the readiness of profile for a studio type.
func (e *Evaluator) Evaluate(profile *types.VoiceProfile, studio string) types.Readiness {
	threshold, known := e.Threshold(studio)
	if !known {
		e.log.WithFields(logrus.Fields{
			"studio_type": studio,
			"threshold":   threshold,
		}).Warn("Unknown studio type, using default threshold")
	}

	score := profile.ConfidenceLevel
	tier := TierFor(score)
	r := types.Readiness{Score: score, Tier: tier}
	switch {
	case profile.IsEmpty():
		r.Tier = types.TierNotStarted
		r.Message = "No voice profile yet. Upload a few writing samples so your voice can be learned."
	case score >= threshold:
		r.IsReady = true
		r.Message = fmt.Sprintf("Your voice profile is %s (%d%%) and ready for %s content.", tier.Label(), score, studioLabel(studio))
	default:
		r.Message = fmt.Sprintf("Your voice profile is %s (%d%%). %s content needs %d%% confidence, so add more writing samples.",
			tier.Label(), score, capitalize(studioLabel(studio)), threshold)
	}
	return r
}

// GenerationContext is everything a downstream generator may use of profile.
// It never exposes per-document data.
func (e *Evaluator) GenerationContext(profile *types.VoiceProfile, studio string) types.GenerationContext {
	ctx := types.GenerationContext{
		HasVoiceProfile: !profile.IsEmpty(),
		StudioType:      studio,
		Readiness:       e.Evaluate(profile, studio),
	}
	if ctx.HasVoiceProfile {
		ctx.PromptInjection = PromptInjection(profile.Aggregate)
	}
	return ctx
}

func normalizeStudio(studio string) string {
	return strings.ToLower(strings.TrimSpace(studio))
}

func studioLabel(studio string) string {
	if s := normalizeStudio(studio); s != "" {
		return s
	}
	return "general"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
