// Package types provides type definitions for structured data used throughout the voice fingerprint engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"math"
	"time"
)

// SchemaVersion is bumped whenever a field is added to or removed from Fingerprint.
const SchemaVersion = 1

const (
	// MaxTopWords caps the ordered top-word set of a fingerprint
	MaxTopWords = 20
	// MaxEmphasisPatterns caps the emphasis device set of a fingerprint
	MaxEmphasisPatterns = 8
)

// Field group names, in the order they are reported in evolution entries.
const (
	GroupVocabulary  = "vocabulary"
	GroupRhythm      = "rhythm"
	GroupPunctuation = "punctuation"
	GroupVoice       = "voice"
	GroupRhetoric    = "rhetoric"
)

// Groups lists every field group in report order.
var Groups = []string{GroupVocabulary, GroupRhythm, GroupPunctuation, GroupVoice, GroupRhetoric}

// Fingerprint is the numeric style signature of one document, or the weighted
// composite of several when used as a profile aggregate.
type Fingerprint struct {
	Vocabulary  VocabularyStats  `json:"vocabulary"`
	Rhythm      RhythmStats      `json:"rhythm"`
	Punctuation PunctuationStats `json:"punctuation"`
	Voice       VoiceStats       `json:"voice"`
	Rhetoric    RhetoricStats    `json:"rhetoric"`
	Meta        FingerprintMeta  `json:"meta"`
}

// VocabularyStats holds word-level statistics.
type VocabularyStats struct {
	// UniqueWordCount is integral for a single document and a weighted mean in an aggregate.
	UniqueWordCount  float64  `json:"unique_word_count"`
	AvgWordLength    float64  `json:"avg_word_length"`
	ComplexWordRatio float64  `json:"complex_word_ratio"`
	ContractionRatio float64  `json:"contraction_ratio"`
	TopWords         []string `json:"top_words"`
	RarityScore      float64  `json:"rarity_score"`
}

// RhythmStats holds sentence and paragraph length statistics, in words.
type RhythmStats struct {
	AvgSentenceLength     float64 `json:"avg_sentence_length"`
	SentenceLengthStdDev  float64 `json:"sentence_length_std_dev"`
	ShortSentenceRatio    float64 `json:"short_sentence_ratio"`
	LongSentenceRatio     float64 `json:"long_sentence_ratio"`
	AvgParagraphLength    float64 `json:"avg_paragraph_length"`
	ParagraphLengthStdDev float64 `json:"paragraph_length_std_dev"`
}

// PunctuationStats holds punctuation densities. Every rate is per 100 sentences
// except CommaRate, which is per 100 words.
type PunctuationStats struct {
	ExclamationRate float64 `json:"exclamation_rate"`
	QuestionRate    float64 `json:"question_rate"`
	SemicolonRate   float64 `json:"semicolon_rate"`
	DashRate        float64 `json:"dash_rate"`
	EllipsisRate    float64 `json:"ellipsis_rate"`
	ColonRate       float64 `json:"colon_rate"`
	CommaRate       float64 `json:"comma_rate"`
}

// VoiceStats holds stance and register markers.
type VoiceStats struct {
	HedgeDensity        float64 `json:"hedge_density"`
	QualifierDensity    float64 `json:"qualifier_density"`
	AssertiveDensity    float64 `json:"assertive_density"`
	PersonalPronounRate float64 `json:"personal_pronoun_rate"`
	FormalityScore      float64 `json:"formality_score"`
	ActiveVoiceRatio    float64 `json:"active_voice_ratio"`
}

// RhetoricStats holds structural habits.
type RhetoricStats struct {
	QuestionOpenerRate float64  `json:"question_opener_rate"`
	TransitionWordRate float64  `json:"transition_word_rate"`
	ListUsageRate      float64  `json:"list_usage_rate"`
	ExampleUsageRate   float64  `json:"example_usage_rate"`
	EmphasisPatterns   []string `json:"emphasis_patterns"`
}

// FingerprintMeta describes the sample a fingerprint was computed from.
type FingerprintMeta struct {
	SampleWordCount     int       `json:"sample_word_count"`
	SampleSentenceCount int       `json:"sample_sentence_count"`
	ExtractedAt         time.Time `json:"extracted_at"`
	SchemaVersion       int       `json:"schema_version"`
}

// NumericField describes one fusible float field of a Fingerprint.
type NumericField struct {
	Group string
	Name  string
	// Scale normalizes the field so that differences are comparable across fields.
	Scale float64
	// Bounded fields must stay within [0,1]; others must be finite and non-negative.
	Bounded bool
	Ref     func(*Fingerprint) *float64
}

var numericFields = []NumericField{
	{GroupVocabulary, "unique_word_count", 1000, false, func(f *Fingerprint) *float64 { return &f.Vocabulary.UniqueWordCount }},
	{GroupVocabulary, "avg_word_length", 10, false, func(f *Fingerprint) *float64 { return &f.Vocabulary.AvgWordLength }},
	{GroupVocabulary, "complex_word_ratio", 1, true, func(f *Fingerprint) *float64 { return &f.Vocabulary.ComplexWordRatio }},
	{GroupVocabulary, "contraction_ratio", 1, true, func(f *Fingerprint) *float64 { return &f.Vocabulary.ContractionRatio }},
	{GroupVocabulary, "rarity_score", 1, true, func(f *Fingerprint) *float64 { return &f.Vocabulary.RarityScore }},

	{GroupRhythm, "avg_sentence_length", 40, false, func(f *Fingerprint) *float64 { return &f.Rhythm.AvgSentenceLength }},
	{GroupRhythm, "sentence_length_std_dev", 20, false, func(f *Fingerprint) *float64 { return &f.Rhythm.SentenceLengthStdDev }},
	{GroupRhythm, "short_sentence_ratio", 1, true, func(f *Fingerprint) *float64 { return &f.Rhythm.ShortSentenceRatio }},
	{GroupRhythm, "long_sentence_ratio", 1, true, func(f *Fingerprint) *float64 { return &f.Rhythm.LongSentenceRatio }},
	{GroupRhythm, "avg_paragraph_length", 200, false, func(f *Fingerprint) *float64 { return &f.Rhythm.AvgParagraphLength }},
	{GroupRhythm, "paragraph_length_std_dev", 100, false, func(f *Fingerprint) *float64 { return &f.Rhythm.ParagraphLengthStdDev }},

	{GroupPunctuation, "exclamation_rate", 100, false, func(f *Fingerprint) *float64 { return &f.Punctuation.ExclamationRate }},
	{GroupPunctuation, "question_rate", 100, false, func(f *Fingerprint) *float64 { return &f.Punctuation.QuestionRate }},
	{GroupPunctuation, "semicolon_rate", 100, false, func(f *Fingerprint) *float64 { return &f.Punctuation.SemicolonRate }},
	{GroupPunctuation, "dash_rate", 100, false, func(f *Fingerprint) *float64 { return &f.Punctuation.DashRate }},
	{GroupPunctuation, "ellipsis_rate", 100, false, func(f *Fingerprint) *float64 { return &f.Punctuation.EllipsisRate }},
	{GroupPunctuation, "colon_rate", 100, false, func(f *Fingerprint) *float64 { return &f.Punctuation.ColonRate }},
	{GroupPunctuation, "comma_rate", 20, false, func(f *Fingerprint) *float64 { return &f.Punctuation.CommaRate }},

	{GroupVoice, "hedge_density", 1, true, func(f *Fingerprint) *float64 { return &f.Voice.HedgeDensity }},
	{GroupVoice, "qualifier_density", 1, true, func(f *Fingerprint) *float64 { return &f.Voice.QualifierDensity }},
	{GroupVoice, "assertive_density", 1, true, func(f *Fingerprint) *float64 { return &f.Voice.AssertiveDensity }},
	{GroupVoice, "personal_pronoun_rate", 1, true, func(f *Fingerprint) *float64 { return &f.Voice.PersonalPronounRate }},
	{GroupVoice, "formality_score", 1, true, func(f *Fingerprint) *float64 { return &f.Voice.FormalityScore }},
	{GroupVoice, "active_voice_ratio", 1, true, func(f *Fingerprint) *float64 { return &f.Voice.ActiveVoiceRatio }},

	{GroupRhetoric, "question_opener_rate", 1, true, func(f *Fingerprint) *float64 { return &f.Rhetoric.QuestionOpenerRate }},
	{GroupRhetoric, "transition_word_rate", 1, false, func(f *Fingerprint) *float64 { return &f.Rhetoric.TransitionWordRate }},
	{GroupRhetoric, "list_usage_rate", 1, true, func(f *Fingerprint) *float64 { return &f.Rhetoric.ListUsageRate }},
	{GroupRhetoric, "example_usage_rate", 1, false, func(f *Fingerprint) *float64 { return &f.Rhetoric.ExampleUsageRate }},
}

// NumericFields returns the fusible float fields of a Fingerprint in a fixed order.
func NumericFields() []NumericField {
	return numericFields
}

// FingerprintError reports a fingerprint that violates its invariants
type FingerprintError struct {
	Field   string
	Message string
}

func (e *FingerprintError) Error() string {
	return fmt.Sprintf("invalid fingerprint: %s: %s", e.Field, e.Message)
}

// Validate checks the fingerprint invariants. minWords is the sample size floor;
// pass 0 to skip the sample size check (aggregates of an empty profile).
func (f *Fingerprint) Validate(minWords int) error {
	for _, field := range numericFields {
		v := *field.Ref(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FingerprintError{Field: field.Name, Message: "must be finite"}
		}
		if v < 0 {
			return &FingerprintError{Field: field.Name, Message: fmt.Sprintf("must be non-negative, got %g", v)}
		}
		if field.Bounded && v > 1 {
			return &FingerprintError{Field: field.Name, Message: fmt.Sprintf("must be within [0,1], got %g", v)}
		}
	}
	if len(f.Vocabulary.TopWords) > MaxTopWords {
		return &FingerprintError{Field: "top_words", Message: fmt.Sprintf("at most %d entries allowed", MaxTopWords)}
	}
	if len(f.Rhetoric.EmphasisPatterns) > MaxEmphasisPatterns {
		return &FingerprintError{Field: "emphasis_patterns", Message: fmt.Sprintf("at most %d entries allowed", MaxEmphasisPatterns)}
	}
	if f.Meta.SampleWordCount < 0 || f.Meta.SampleSentenceCount < 0 {
		return &FingerprintError{Field: "meta", Message: "sample counts must be non-negative"}
	}
	if f.Meta.SampleWordCount < minWords {
		return &FingerprintError{
			Field:   "sample_word_count",
			Message: fmt.Sprintf("%d words is below the %d word minimum", f.Meta.SampleWordCount, minWords),
		}
	}
	return nil
}

// Clone returns a deep copy so that set-valued fields are never shared.
func (f Fingerprint) Clone() Fingerprint {
	out := f
	if f.Vocabulary.TopWords != nil {
		out.Vocabulary.TopWords = append([]string(nil), f.Vocabulary.TopWords...)
	}
	if f.Rhetoric.EmphasisPatterns != nil {
		out.Rhetoric.EmphasisPatterns = append([]string(nil), f.Rhetoric.EmphasisPatterns...)
	}
	return out
}
