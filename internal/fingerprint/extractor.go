// Package fingerprint turns plain text into a Fingerprint by running every
// analyzer over one segmented document.
package fingerprint

import (
	"strings"
	"time"

	"github.com/jonathan/voice-fingerprint/internal/analysis"
	"github.com/jonathan/voice-fingerprint/internal/segment"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

const (
	// DefaultMinWords is the word floor below which extraction is refused
	DefaultMinWords = 100
	// DefaultMaxWords bounds the analyzed prefix of long documents
	DefaultMaxWords = 20000
)

// Clock supplies extraction timestamps.
type Clock func() time.Time

// SystemClock returns the current UTC time at microsecond precision, which is
// what every supported store round-trips losslessly.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Extractor computes fingerprints. The zero value uses the defaults.
type Extractor struct {
	MinWords int
	MaxWords int
	Clock    Clock
}

// NewExtractor creates an extractor with explicit word bounds. Non-positive
// bounds fall back to the defaults.
func NewExtractor(minWords, maxWords int) *Extractor {
	return &Extractor{MinWords: minWords, MaxWords: maxWords, Clock: SystemClock}
}

// Extract analyzes text. Text below the word floor is refused before any
// analyzer runs; text above MaxWords is cut after its MaxWords-th word.
// All features depend on the text alone, only Meta.ExtractedAt comes from the clock.
func (e *Extractor) Extract(text string) (types.Fingerprint, error) {
	normalized := segment.Normalize(text)
	if words := segment.CountWords(normalized); words < e.Floor() {
		return types.Fingerprint{}, &MinimumLengthError{Words: words, Minimum: e.Floor()}
	}

	analyzed, _ := segment.TruncateWords(normalized, e.maxWords())
	analyzed = strings.TrimSpace(analyzed)
	doc, err := segment.Split(analyzed)
	if err != nil {
		return types.Fingerprint{}, err
	}

	s := analysis.NewSample(analyzed, doc)
	vocab := analysis.Lexical(s)
	fp := types.Fingerprint{
		Vocabulary:  vocab,
		Rhythm:      analysis.Rhythm(s),
		Punctuation: analysis.Punctuation(s),
		Voice:       analysis.Voice(s, vocab),
		Rhetoric:    analysis.Rhetoric(s),
		Meta: types.FingerprintMeta{
			SampleWordCount:     s.WordCount(),
			SampleSentenceCount: doc.SentenceCount(),
			ExtractedAt:         e.now(),
			SchemaVersion:       types.SchemaVersion,
		},
	}
	if err := fp.Validate(e.Floor()); err != nil {
		return types.Fingerprint{}, err
	}
	return fp, nil
}

// Floor is the word count below which text or a fingerprint is refused.
func (e *Extractor) Floor() int {
	if e.MinWords > 0 {
		return e.MinWords
	}
	return DefaultMinWords
}

func (e *Extractor) maxWords() int {
	if e.MaxWords > 0 {
		return e.MaxWords
	}
	return DefaultMaxWords
}

func (e *Extractor) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return SystemClock()
}
