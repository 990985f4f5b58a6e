package rewriting

import (
	"math"
	"strings"
)

// withinTolerance reports whether got is within tolerance (a fraction) of want.
// Very short sources get at least two words of slack.
func withinTolerance(got, want int, tolerance float64) bool {
	slack := math.Max(2, math.Round(float64(want)*tolerance))
	return math.Abs(float64(got-want)) <= slack
}

// forbiddenPhrasesIn returns the phrases that appear in text, case-insensitively,
// each reported once in its original spelling.
func forbiddenPhrasesIn(text string, phrases []string) []string {
	if len(phrases) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]bool)
	for _, phrase := range phrases {
		normalized := strings.ToLower(strings.TrimSpace(phrase))
		if normalized == "" || seen[normalized] {
			continue
		}
		if strings.Contains(lower, normalized) {
			found = append(found, phrase)
			seen[normalized] = true
		}
	}
	return found
}

// introduced keeps the phrases present in rewritten but absent from source.
// A phrase the user already wrote is part of their voice.
func introduced(source, rewritten string, phrases []string) []string {
	already := make(map[string]bool)
	for _, p := range forbiddenPhrasesIn(source, phrases) {
		already[strings.ToLower(strings.TrimSpace(p))] = true
	}
	var out []string
	for _, p := range forbiddenPhrasesIn(rewritten, phrases) {
		if !already[strings.ToLower(strings.TrimSpace(p))] {
			out = append(out, p)
		}
	}
	return out
}
