package readiness

import (
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		confidence int
		expected   types.Tier
	}{
		{0, types.TierNotStarted},
		{1, types.TierLearning},
		{29, types.TierLearning},
		{30, types.TierDeveloping},
		{59, types.TierDeveloping},
		{60, types.TierConfident},
		{84, types.TierConfident},
		{85, types.TierMastered},
		{100, types.TierMastered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TierFor(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestThreshold(t *testing.T) {
	e := NewEvaluator(nil, 0, nil)

	v, known := e.Threshold("career")
	assert.True(t, known)
	assert.Equal(t, 30, v)

	v, known = e.Threshold("  Academic ")
	assert.True(t, known)
	assert.Equal(t, 60, v)

	v, known = e.Threshold("podcast")
	assert.False(t, known)
	assert.Equal(t, DefaultThreshold, v)

	custom := NewEvaluator(map[string]int{"Newsletter": 40}, 70, nil)
	v, known = custom.Threshold("newsletter")
	assert.True(t, known)
	assert.Equal(t, 40, v)
	v, _ = custom.Threshold("career")
	assert.Equal(t, 70, v)
}

func profileWithConfidence(confidence int) *types.VoiceProfile {
	p := types.EmptyProfile("user-1")
	p.ConfidenceLevel = confidence
	p.DocumentCount = 3
	p.TotalWordCount = 3000
	p.Aggregate.Meta.SampleWordCount = 3000
	p.Aggregate.Rhythm.AvgSentenceLength = 11
	return &p
}

func TestEvaluate_EmptyProfile(t *testing.T) {
	e := NewEvaluator(nil, 0, nil)
	empty := types.EmptyProfile("user-1")

	r := e.Evaluate(&empty, "career")
	assert.False(t, r.IsReady)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, types.TierNotStarted, r.Tier)
	assert.Contains(t, r.Message, "No voice profile yet")
}

func TestEvaluate_PerStudioGate(t *testing.T) {
	e := NewEvaluator(nil, 0, nil)
	p := profileWithConfidence(35)

	career := e.Evaluate(p, "career")
	assert.True(t, career.IsReady)
	assert.Equal(t, types.TierDeveloping, career.Tier)
	assert.Equal(t, "Your voice profile is Developing (35%) and ready for career content.", career.Message)

	academic := e.Evaluate(p, "academic")
	assert.False(t, academic.IsReady)
	assert.Equal(t, 35, academic.Score)
	assert.Contains(t, academic.Message, "Academic content needs 60% confidence")
}

func TestEvaluate_UnknownStudioLogsWarning(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	e := NewEvaluator(nil, 0, logger.WithField("component", "readiness"))

	r := e.Evaluate(profileWithConfidence(55), "podcast")
	assert.True(t, r.IsReady)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "podcast", entry.Data["studio_type"])
}

func TestGenerationContext(t *testing.T) {
	e := NewEvaluator(nil, 0, nil)

	empty := types.EmptyProfile("user-1")
	ctx := e.GenerationContext(&empty, "career")
	assert.False(t, ctx.HasVoiceProfile)
	assert.False(t, ctx.Readiness.IsReady)
	assert.Empty(t, ctx.PromptInjection)

	ctx = e.GenerationContext(profileWithConfidence(62), "business")
	assert.True(t, ctx.HasVoiceProfile)
	assert.Equal(t, "business", ctx.StudioType)
	assert.True(t, ctx.Readiness.IsReady)
	assert.Equal(t, types.TierConfident, ctx.Readiness.Tier)
	assert.Contains(t, ctx.PromptInjection, "tends to write short, direct sentences")
}

func casualAggregate() types.Fingerprint {
	var fp types.Fingerprint
	fp.Rhythm.AvgSentenceLength = 9
	fp.Rhythm.SentenceLengthStdDev = 3
	fp.Vocabulary.ComplexWordRatio = 0.05
	fp.Vocabulary.ContractionRatio = 0.05
	fp.Vocabulary.TopWords = []string{"coffee", "river", "walk", "weekend", "sister", "mornings"}
	fp.Punctuation.ExclamationRate = 15
	fp.Punctuation.QuestionRate = 12
	fp.Voice.ActiveVoiceRatio = 0.9
	fp.Voice.HedgeDensity = 0.02
	fp.Voice.PersonalPronounRate = 0.08
	fp.Voice.FormalityScore = 0.2
	fp.Rhetoric.TransitionWordRate = 0.1
	fp.Rhetoric.EmphasisPatterns = []string{"all_caps", "ellipsis"}
	fp.Meta.SampleWordCount = 500
	return fp
}

func TestPromptInjection_Casual(t *testing.T) {
	expected := "Write in the user's personal voice. The user:\n" +
		"- tends to write short, direct sentences\n" +
		"- keeps sentence length fairly uniform\n" +
		"- prefers plain, everyday words\n" +
		"- uses contractions freely\n" +
		"- rarely uses semicolons\n" +
		"- uses exclamation marks for energy\n" +
		"- asks the reader questions\n" +
		"- favors active voice\n" +
		"- hedges claims with words like \"maybe\" and \"I think\"\n" +
		"- writes in the first person\n" +
		"- keeps a casual, conversational register\n" +
		"- often uses words like \"coffee\", \"river\", \"walk\", \"weekend\", \"sister\"\n" +
		"- adds emphasis with ALL-CAPS words, ellipses"

	assert.Equal(t, expected, PromptInjection(casualAggregate()))
	assert.Equal(t, PromptInjection(casualAggregate()), PromptInjection(casualAggregate()))
}

func TestPromptInjection_Formal(t *testing.T) {
	var fp types.Fingerprint
	fp.Rhythm.AvgSentenceLength = 27
	fp.Rhythm.SentenceLengthStdDev = 9
	fp.Vocabulary.ComplexWordRatio = 0.22
	fp.Vocabulary.ContractionRatio = 0.001
	fp.Punctuation.SemicolonRate = 8
	fp.Voice.ActiveVoiceRatio = 0.5
	fp.Voice.FormalityScore = 0.8
	fp.Rhetoric.TransitionWordRate = 0.3
	fp.Meta.SampleWordCount = 2000

	traits := Traits(fp)
	assert.Equal(t, []string{
		"favors long, flowing sentences",
		"varies sentence length a lot",
		"uses sophisticated vocabulary",
		"avoids contractions",
		"often uses semicolons",
		"often writes in the passive voice",
		"keeps a formal register",
		"links ideas with transition words",
	}, traits)
}

func TestPromptInjection_EmptyAggregate(t *testing.T) {
	assert.Empty(t, PromptInjection(types.Fingerprint{}))
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"career", "Career"},
		{"éditorial", "Éditorial"},
		{"ürün", "Ürün"},
		{"日本", "日本"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := capitalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
