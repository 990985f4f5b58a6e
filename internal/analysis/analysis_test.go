package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/segment"
)

func newSample(t *testing.T, text string) *Sample {
	t.Helper()
	doc, err := segment.Split(text)
	require.NoError(t, err)
	return NewSample(segment.Normalize(text), doc)
}

func TestSyllables(t *testing.T) {
	tests := []struct {
		word     string
		expected int
	}{
		{"cat", 1},
		{"the", 1},
		{"make", 1},
		{"table", 2},
		{"agree", 2},
		{"rhythm", 1},
		{"beautiful", 3},
		{"education", 4},
		{"42", 1},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, Syllables(tt.word))
		})
	}
}

func TestIsContraction(t *testing.T) {
	tests := []struct {
		word     string
		expected bool
	}{
		{"don't", true},
		{"we're", true},
		{"i'm", true},
		{"they'll", true},
		{"it's", true},
		{"let's", true},
		{"john's", false},
		{"o'clock", false},
		{"rock'n", false},
		{"plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, isContraction(tt.word))
		})
	}
}

func TestLexical(t *testing.T) {
	s := newSample(t, "I don't like cats. Cats are great. Dogs are great too.")
	stats := Lexical(s)

	assert.Equal(t, 8.0, stats.UniqueWordCount)
	assert.InDelta(t, 41.0/11.0, stats.AvgWordLength, 1e-9)
	assert.InDelta(t, 1.0/11.0, stats.ContractionRatio, 1e-9)
	assert.Equal(t, 0.0, stats.ComplexWordRatio)
	assert.Equal(t, []string{"cats", "great", "dogs"}, stats.TopWords)
	assert.InDelta(t, 3.0/11.0, stats.RarityScore, 1e-9)
}

func TestLexical_TopWordsCapped(t *testing.T) {
	text := ""
	for _, w := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india",
		"juliet", "kilo", "lima", "mike", "november", "oscar", "papa", "quebec", "romeo",
		"sierra", "tango", "uniform", "victor",
	} {
		text += w + " "
	}
	stats := Lexical(newSample(t, text+"victor."))

	require.Len(t, stats.TopWords, 20)
	assert.Equal(t, "victor", stats.TopWords[0])
	assert.Equal(t, "alpha", stats.TopWords[1])
}

func TestRhythm(t *testing.T) {
	stats := Rhythm(newSample(t, "One two three. One two three four five.\n\nOne."))

	assert.InDelta(t, 3.0, stats.AvgSentenceLength, 1e-9)
	assert.InDelta(t, math.Sqrt(8.0/3.0), stats.SentenceLengthStdDev, 1e-9)
	assert.Equal(t, 1.0, stats.ShortSentenceRatio)
	assert.Equal(t, 0.0, stats.LongSentenceRatio)
	assert.InDelta(t, 4.5, stats.AvgParagraphLength, 1e-9)
	assert.InDelta(t, 3.5, stats.ParagraphLengthStdDev, 1e-9)
}

func TestPunctuation(t *testing.T) {
	s := newSample(t, "Wow!!! Is it true? Yes; it is — really. Time: 10:30 at https://x.io, costs 1,000 dollars.")
	require.Equal(t, 4, s.SentenceCount())
	require.Equal(t, 19, s.WordCount())

	stats := Punctuation(s)
	assert.InDelta(t, 25.0, stats.ExclamationRate, 1e-9)
	assert.InDelta(t, 25.0, stats.QuestionRate, 1e-9)
	assert.InDelta(t, 25.0, stats.SemicolonRate, 1e-9)
	assert.InDelta(t, 25.0, stats.DashRate, 1e-9)
	assert.InDelta(t, 0.0, stats.EllipsisRate, 1e-9)
	assert.InDelta(t, 25.0, stats.ColonRate, 1e-9)
	assert.InDelta(t, 100.0/19.0, stats.CommaRate, 1e-9)
}

func TestPunctuation_EllipsisVariants(t *testing.T) {
	stats := Punctuation(newSample(t, "Well... maybe. Or… not. Fine -- done."))
	assert.InDelta(t, 200.0/3.0, stats.EllipsisRate, 1e-9)
	assert.InDelta(t, 100.0/3.0, stats.DashRate, 1e-9)
}

func TestVoice_Conversational(t *testing.T) {
	s := newSample(t, "I think this is very good. Clearly we must act. The report was written by the team.")
	require.Equal(t, 17, s.WordCount())

	stats := Voice(s, Lexical(s))
	assert.InDelta(t, 1.0/17.0, stats.HedgeDensity, 1e-9)
	assert.InDelta(t, 1.0/17.0, stats.QualifierDensity, 1e-9)
	assert.InDelta(t, 2.0/17.0, stats.AssertiveDensity, 1e-9)
	assert.InDelta(t, 2.0/17.0, stats.PersonalPronounRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, stats.ActiveVoiceRatio, 1e-9)
	assert.Equal(t, 0.0, stats.FormalityScore)
}

func TestVoice_Formal(t *testing.T) {
	s := newSample(t, "The committee determined the regulatory framework. Implementation requires additional consideration.")
	vocab := Lexical(s)
	require.InDelta(t, 0.8, vocab.ComplexWordRatio, 1e-9)

	stats := Voice(s, vocab)
	assert.Equal(t, 1.0, stats.FormalityScore)
	assert.Equal(t, 1.0, stats.ActiveVoiceRatio)
	assert.Equal(t, 0.0, stats.PersonalPronounRate)
}

func TestRhetoric(t *testing.T) {
	text := "Why does this matter? It matters.\n\n" +
		"However, lists help:\n- first item here\n- second item here\n\n" +
		"For example, THIS works!! Really?!"
	s := newSample(t, text)
	require.Equal(t, 5, s.SentenceCount())

	stats := Rhetoric(s)
	assert.InDelta(t, 1.0/3.0, stats.QuestionOpenerRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, stats.ListUsageRate, 1e-9)
	assert.InDelta(t, 0.2, stats.TransitionWordRate, 1e-9)
	assert.InDelta(t, 0.2, stats.ExampleUsageRate, 1e-9)
	assert.Equal(t, []string{EmphasisAllCaps, EmphasisInterrobang, EmphasisRepeatedExclamation}, stats.EmphasisPatterns)
}

func TestRhetoric_NoEmphasis(t *testing.T) {
	stats := Rhetoric(newSample(t, "A plain sentence. Another plain sentence."))
	assert.NotNil(t, stats.EmphasisPatterns)
	assert.Empty(t, stats.EmphasisPatterns)
}

func TestCountPhrases_LongestMatchWins(t *testing.T) {
	words := []string{"on", "the", "other", "hand", "however", "in", "addition", "thus"}
	assert.Equal(t, 4, countPhrases(words, transitionPhrases))
	assert.Equal(t, 0, countPhrases(nil, transitionPhrases))
}
