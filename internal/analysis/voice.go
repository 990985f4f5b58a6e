package analysis

import (
	"strings"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Formality weights. The score starts neutral and moves up with complex
// vocabulary and down with conversational markers.
const (
	formalityBase        = 0.5
	formalityComplex     = 1.5
	formalityContraction = 4.0
	formalityHedge       = 6.0
	formalityPronoun     = 2.0
	formalityImpersonal  = 0.1
)

// Voice computes stance markers. vocab supplies the complex-word and
// contraction ratios that feed the formality score.
func Voice(s *Sample, vocab types.VocabularyStats) types.VoiceStats {
	n := s.WordCount()
	pronouns := 0
	for _, w := range s.Lower {
		if personalPronouns[w] {
			pronouns++
		}
	}

	stats := types.VoiceStats{
		HedgeDensity:        ratio(countPhrases(s.Lower, hedgePhrases), n),
		QualifierDensity:    ratio(countPhrases(s.Lower, qualifierPhrases), n),
		AssertiveDensity:    ratio(countPhrases(s.Lower, assertivePhrases), n),
		PersonalPronounRate: ratio(pronouns, n),
		ActiveVoiceRatio:    activeVoiceRatio(s),
	}

	formality := formalityBase +
		formalityComplex*vocab.ComplexWordRatio -
		formalityContraction*vocab.ContractionRatio -
		formalityHedge*(stats.HedgeDensity+stats.QualifierDensity) -
		formalityPronoun*stats.PersonalPronounRate
	if pronouns == 0 {
		formality += formalityImpersonal
	}
	stats.FormalityScore = clamp01(formality)
	return stats
}

// activeVoiceRatio is the share of sentences without a passive construction,
// detected as a form of "to be" directly followed by a past participle.
func activeVoiceRatio(s *Sample) float64 {
	total, passive := 0, 0
	for _, sent := range s.Doc.Sentences() {
		if len(sent.Words) == 0 {
			continue
		}
		total++
		if isPassive(sent.Words) {
			passive++
		}
	}
	if total == 0 {
		return 1
	}
	return ratio(total-passive, total)
}

func isPassive(words []string) bool {
	for i := 0; i+1 < len(words); i++ {
		if beVerbs[strings.ToLower(words[i])] && isParticiple(strings.ToLower(words[i+1])) {
			return true
		}
	}
	return false
}

func isParticiple(w string) bool {
	if irregularParticiples[w] {
		return true
	}
	return len(w) >= 4 && strings.HasSuffix(w, "ed") && !edNonParticiples[w]
}
