package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/voice-fingerprint/internal/segment"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Emphasis device names as stored in a fingerprint.
const (
	EmphasisAllCaps             = "all_caps"
	EmphasisBoldMarkup          = "bold_markup"
	EmphasisEllipsis            = "ellipsis"
	EmphasisInterrobang         = "interrobang"
	EmphasisRepeatedExclamation = "repeated_exclamation"
	EmphasisRepeatedQuestion    = "repeated_question"
)

var (
	listLine        = regexp.MustCompile(`^\s*(?:[-*+•]|\d{1,3}[.)]|\([a-zA-Z0-9]{1,3}\))\s+\S`)
	repeatedBang    = regexp.MustCompile(`!{2,}`)
	repeatedQuery   = regexp.MustCompile(`\?{2,}`)
	interrobang     = regexp.MustCompile(`\?!|!\?|‽`)
	boldMarkup      = regexp.MustCompile(`\*\*[^*\n]+\*\*|__[^_\n]+__`)
	sentenceClosers = "\"')]”’ \t\n"
)

// Rhetoric computes structural habits.
func Rhetoric(s *Sample) types.RhetoricStats {
	sentences := s.SentenceCount()
	paragraphs, lists, openers := 0, 0, 0
	for _, p := range s.Doc.Paragraphs {
		if p.WordCount() == 0 {
			continue
		}
		paragraphs++
		if hasListLine(p.Lines) {
			lists++
		}
		if opensWithQuestion(p.Sentences) {
			openers++
		}
	}

	return types.RhetoricStats{
		QuestionOpenerRate: ratio(openers, paragraphs),
		TransitionWordRate: ratio(countPhrases(s.Lower, transitionPhrases), sentences),
		ListUsageRate:      ratio(lists, paragraphs),
		ExampleUsageRate:   ratio(countPhrases(s.Lower, examplePhrases), sentences),
		EmphasisPatterns:   emphasisPatterns(s),
	}
}

func hasListLine(lines []string) bool {
	for _, l := range lines {
		if listLine.MatchString(l) {
			return true
		}
	}
	return false
}

func opensWithQuestion(sentences []segment.Sentence) bool {
	for _, sent := range sentences {
		if len(sent.Words) == 0 {
			continue
		}
		return strings.HasSuffix(strings.TrimRight(sent.Text, sentenceClosers), "?")
	}
	return false
}

// emphasisPatterns returns the sorted set of emphasis devices found in the sample.
func emphasisPatterns(s *Sample) []string {
	found := []string{}
	add := func(ok bool, name string) {
		if ok {
			found = append(found, name)
		}
	}
	add(hasAllCapsWord(s.Words), EmphasisAllCaps)
	add(boldMarkup.MatchString(s.Text), EmphasisBoldMarkup)
	add(ellipsisRun.MatchString(s.Text), EmphasisEllipsis)
	add(interrobang.MatchString(s.Text), EmphasisInterrobang)
	add(repeatedBang.MatchString(s.Text), EmphasisRepeatedExclamation)
	add(repeatedQuery.MatchString(s.Text), EmphasisRepeatedQuestion)
	sort.Strings(found)
	if len(found) > types.MaxEmphasisPatterns {
		found = found[:types.MaxEmphasisPatterns]
	}
	return found
}

func hasAllCapsWord(words []string) bool {
	for _, w := range words {
		if utf8.RuneCountInString(w) < 4 {
			continue
		}
		caps := true
		for _, r := range w {
			if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
				caps = false
				break
			}
		}
		if caps {
			return true
		}
	}
	return false
}
