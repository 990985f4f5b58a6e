package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Lexical computes vocabulary statistics.
func Lexical(s *Sample) types.VocabularyStats {
	n := s.WordCount()
	if n == 0 {
		return types.VocabularyStats{TopWords: []string{}}
	}

	unique := make(map[string]bool, n)
	letters, complexWords, contractions, common := 0, 0, 0, 0
	for i, w := range s.Lower {
		unique[w] = true
		letters += utf8.RuneCountInString(s.Words[i])
		if isComplex(w) {
			complexWords++
		}
		if isContraction(w) {
			contractions++
		}
		if commonWords[w] {
			common++
		}
	}

	return types.VocabularyStats{
		UniqueWordCount:  float64(len(unique)),
		AvgWordLength:    ratio(letters, n),
		ComplexWordRatio: ratio(complexWords, n),
		ContractionRatio: ratio(contractions, n),
		TopWords:         topWords(s.Lower, types.MaxTopWords),
		RarityScore:      clamp01(1 - ratio(common, n)),
	}
}

// Syllables estimates the syllable count of an English word as the number of
// vowel runs, dropping a silent trailing "e". The result is never below 1.
func Syllables(word string) int {
	count := 0
	inVowel := false
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(r)
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !inVowel {
			count++
		}
		inVowel = vowel
	}
	w := b.String()
	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && !strings.HasSuffix(w, "ee") {
		count--
	}
	if count < 1 {
		return 1
	}
	return count
}

func isComplex(lower string) bool {
	if strings.Contains(lower, "-") || commonLongWords[lower] || !hasLetter(lower) {
		return false
	}
	for _, r := range lower {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return Syllables(lower) >= 3
}

func isContraction(lower string) bool {
	i := strings.LastIndex(lower, "'")
	if i <= 0 || i == len(lower)-1 {
		return false
	}
	stem, suffix := lower[:i], lower[i+1:]
	switch suffix {
	case "t":
		return strings.HasSuffix(stem, "n")
	case "re", "ve", "ll", "d", "m":
		return true
	case "s":
		return contractionStems[stem]
	}
	return false
}

func hasLetter(w string) bool {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// topWords ranks content words by frequency, breaking ties by first occurrence.
func topWords(lower []string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range lower {
		if utf8.RuneCountInString(w) < 3 || stopwords[w] || !hasLetter(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
