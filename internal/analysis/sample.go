// Package analysis computes the five groups of style statistics that make up a
// fingerprint. Each analyzer reads a Sample and never mutates it.
package analysis

import (
	"math"
	"strings"

	"github.com/jonathan/voice-fingerprint/internal/segment"
)

// Sample is a segmented document together with its lower-cased word stream.
type Sample struct {
	Text  string
	Doc   *segment.Document
	Words []string
	Lower []string
}

// NewSample prepares text that has already been segmented into doc.
func NewSample(text string, doc *segment.Document) *Sample {
	words := doc.Words()
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	return &Sample{Text: text, Doc: doc, Words: words, Lower: lower}
}

// WordCount returns the number of words in the sample.
func (s *Sample) WordCount() int {
	return len(s.Words)
}

// SentenceCount returns the number of non-empty sentences, at least 1.
func (s *Sample) SentenceCount() int {
	if n := s.Doc.SentenceCount(); n > 0 {
		return n
	}
	return 1
}

// countPhrases counts occurrences of any phrase in words. Matches do not
// overlap: after a match, scanning resumes past its last word, and longer
// phrases win over shorter ones starting at the same word.
func countPhrases(words []string, list [][]string) int {
	count := 0
	for i := 0; i < len(words); {
		best := 0
		for _, p := range list {
			if len(p) > best && matchAt(words, i, p) {
				best = len(p)
			}
		}
		if best > 0 {
			count++
			i += best
			continue
		}
		i++
	}
	return count
}

func matchAt(words []string, i int, phrase []string) bool {
	if i+len(phrase) > len(words) {
		return false
	}
	for j, w := range phrase {
		if words[i+j] != w {
			return false
		}
	}
	return true
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// meanStd returns the mean and population standard deviation of xs.
func meanStd(xs []int) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	mean := float64(sum) / float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		d := float64(x) - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(xs)))
}
