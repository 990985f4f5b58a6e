package aggregate

import (
	"math"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Confidence weights and curve constants.
const (
	documentWeight    = 0.35
	wordWeight        = 0.35
	consistencyWeight = 0.30

	documentRate      = 0.5
	wordSaturation    = 2500.0
	varianceSharpness = 20.0
)

// Confidence scores a profile from its document count, total word count and
// the consistency variance of its contributions. The consistency term is
// scaled by the document term, so a single document cannot look consistent.
func Confidence(documents, words int, variance float64) int {
	if documents <= 0 {
		return 0
	}
	d := 1 - math.Exp(-documentRate*float64(documents))
	w := 1 - math.Exp(-float64(words)/wordSaturation)
	c := 1 / (1 + varianceSharpness*math.Max(variance, 0))

	score := int(math.Round(100 * (documentWeight*d + wordWeight*w + consistencyWeight*c*d)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Variance is the unweighted mean, over contributing fingerprints, of each
// fingerprint's mean normalized squared deviation from the aggregate.
func Variance(aggregate types.Fingerprint, contributions []types.Fingerprint) float64 {
	if len(contributions) == 0 {
		return 0
	}
	fields := types.NumericFields()
	total := 0.0
	for i := range contributions {
		sum := 0.0
		for _, f := range fields {
			d := (*f.Ref(&contributions[i]) - *f.Ref(&aggregate)) / f.Scale
			sum += d * d
		}
		total += sum / float64(len(fields))
	}
	return total / float64(len(contributions))
}
