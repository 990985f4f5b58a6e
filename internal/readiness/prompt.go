package readiness

import (
	"fmt"
	"strings"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Fixed cut-offs for the prompt injection. Rates use the fingerprint's own
// units: punctuation per 100 sentences, densities per word.
const (
	shortSentenceAvg      = 12.0
	longSentenceAvg       = 20.0
	variedSentenceStdDev  = 8.0
	uniformSentenceStdDev = 4.0
	sophisticatedComplex  = 0.15
	plainComplex          = 0.07
	freeContractions      = 0.03
	rareContractions      = 0.005
	rareSemicolons        = 1.0
	frequentSemicolons    = 5.0
	frequentExclamations  = 10.0
	frequentQuestions     = 10.0
	frequentDashes        = 10.0
	frequentEllipses      = 5.0
	activeVoice           = 0.85
	passiveVoice          = 0.6
	frequentHedges        = 0.01
	frequentAssertives    = 0.005
	firstPerson           = 0.04
	formalRegister        = 0.6
	casualRegister        = 0.35
	frequentTransitions   = 0.2
	frequentLists         = 0.2
	frequentExamples      = 0.1
	frequentQuestionOpens = 0.2
	promptTopWords        = 5
)

const promptHeader = "Write in the user's personal voice. The user:"

var emphasisDescriptions = map[string]string{
	"all_caps":             "ALL-CAPS words",
	"bold_markup":          "bold markup",
	"ellipsis":             "ellipses",
	"interrobang":          "interrobangs (?!)",
	"repeated_exclamation": "repeated exclamation marks",
	"repeated_question":    "repeated question marks",
}

// PromptInjection renders the salient traits of an aggregate fingerprint as
// plain-language guidance. The same aggregate always renders the same text.
func PromptInjection(agg types.Fingerprint) string {
	if agg.Meta.SampleWordCount == 0 {
		return ""
	}
	traits := Traits(agg)
	if len(traits) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, t := range traits {
		b.WriteString("\n- ")
		b.WriteString(t)
	}
	return b.String()
}

// Traits lists the rendered traits of an aggregate fingerprint in a fixed order.
func Traits(agg types.Fingerprint) []string {
	var traits []string
	add := func(ok bool, trait string) {
		if ok {
			traits = append(traits, trait)
		}
	}
	r, v, p, voice, rh := agg.Rhythm, agg.Vocabulary, agg.Punctuation, agg.Voice, agg.Rhetoric

	switch {
	case r.AvgSentenceLength <= 0:
	case r.AvgSentenceLength < shortSentenceAvg:
		traits = append(traits, "tends to write short, direct sentences")
	case r.AvgSentenceLength <= longSentenceAvg:
		traits = append(traits, "writes medium-length sentences")
	default:
		traits = append(traits, "favors long, flowing sentences")
	}
	add(r.SentenceLengthStdDev > variedSentenceStdDev, "varies sentence length a lot")
	add(r.AvgSentenceLength > 0 && r.SentenceLengthStdDev < uniformSentenceStdDev, "keeps sentence length fairly uniform")

	add(v.ComplexWordRatio > sophisticatedComplex, "uses sophisticated vocabulary")
	add(v.ComplexWordRatio < plainComplex, "prefers plain, everyday words")
	add(v.ContractionRatio > freeContractions, "uses contractions freely")
	add(v.ContractionRatio < rareContractions, "avoids contractions")

	add(p.SemicolonRate < rareSemicolons, "rarely uses semicolons")
	add(p.SemicolonRate > frequentSemicolons, "often uses semicolons")
	add(p.ExclamationRate > frequentExclamations, "uses exclamation marks for energy")
	add(p.QuestionRate > frequentQuestions, "asks the reader questions")
	add(p.DashRate > frequentDashes, "uses dashes to add asides")
	add(p.EllipsisRate > frequentEllipses, "trails off with ellipses")

	add(voice.ActiveVoiceRatio >= activeVoice, "favors active voice")
	add(voice.ActiveVoiceRatio < passiveVoice, "often writes in the passive voice")
	add(voice.HedgeDensity > frequentHedges, "hedges claims with words like \"maybe\" and \"I think\"")
	add(voice.AssertiveDensity > frequentAssertives, "states opinions assertively")
	add(voice.PersonalPronounRate > firstPerson, "writes in the first person")
	add(voice.FormalityScore >= formalRegister, "keeps a formal register")
	add(voice.FormalityScore <= casualRegister, "keeps a casual, conversational register")

	add(rh.TransitionWordRate > frequentTransitions, "links ideas with transition words")
	add(rh.ListUsageRate > frequentLists, "organizes ideas in lists")
	add(rh.ExampleUsageRate > frequentExamples, "illustrates points with examples")
	add(rh.QuestionOpenerRate > frequentQuestionOpens, "opens paragraphs with questions")

	if words := v.TopWords; len(words) > 0 {
		if len(words) > promptTopWords {
			words = words[:promptTopWords]
		}
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = fmt.Sprintf("%q", w)
		}
		traits = append(traits, "often uses words like "+strings.Join(quoted, ", "))
	}
	if len(rh.EmphasisPatterns) > 0 {
		devices := make([]string, 0, len(rh.EmphasisPatterns))
		for _, e := range rh.EmphasisPatterns {
			if d, ok := emphasisDescriptions[e]; ok {
				devices = append(devices, d)
			}
		}
		add(len(devices) > 0, "adds emphasis with "+strings.Join(devices, ", "))
	}
	return traits
}
