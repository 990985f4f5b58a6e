package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

var (
	exclamationRun = regexp.MustCompile(`!+`)
	questionRun    = regexp.MustCompile(`\?+`)
	ellipsisRun    = regexp.MustCompile(`\.{3,}|…+`)
	dashRun        = regexp.MustCompile(`[—–]+|-{2,}|\s-\s`)
)

// Punctuation computes punctuation densities. A run of repeated marks such as
// "!!!" counts once.
func Punctuation(s *Sample) types.PunctuationStats {
	perSentence := func(count int) float64 {
		return float64(count) * 100 / float64(s.SentenceCount())
	}
	commas := countCommas(s.Text)
	return types.PunctuationStats{
		ExclamationRate: perSentence(len(exclamationRun.FindAllStringIndex(s.Text, -1))),
		QuestionRate:    perSentence(len(questionRun.FindAllStringIndex(s.Text, -1))),
		SemicolonRate:   perSentence(strings.Count(s.Text, ";")),
		DashRate:        perSentence(len(dashRun.FindAllStringIndex(s.Text, -1))),
		EllipsisRate:    perSentence(len(ellipsisRun.FindAllStringIndex(s.Text, -1))),
		ColonRate:       perSentence(countColons(s.Text)),
		CommaRate:       ratio(commas*100, s.WordCount()),
	}
}

// countColons skips clock times such as 10:30 and URL schemes.
func countColons(text string) int {
	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r != ':' {
			continue
		}
		if betweenDigits(runes, i) {
			continue
		}
		if i+2 < len(runes) && runes[i+1] == '/' && runes[i+2] == '/' {
			continue
		}
		count++
	}
	return count
}

// countCommas skips digit group separators such as 1,000.
func countCommas(text string) int {
	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r == ',' && !betweenDigits(runes, i) {
			count++
		}
	}
	return count
}

func betweenDigits(runes []rune, i int) bool {
	return i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}
