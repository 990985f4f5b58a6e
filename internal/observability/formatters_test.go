package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/rewriting"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

func sampleFingerprint() types.Fingerprint {
	return types.Fingerprint{
		Vocabulary: types.VocabularyStats{
			UniqueWordCount:  180,
			AvgWordLength:    4.25,
			ContractionRatio: 0.08,
			TopWords:         []string{"team", "really", "coffee"},
		},
		Rhythm:   types.RhythmStats{AvgSentenceLength: 12.5, SentenceLengthStdDev: 4},
		Voice:    types.VoiceStats{FormalityScore: 0.31, ActiveVoiceRatio: 0.92},
		Rhetoric: types.RhetoricStats{EmphasisPatterns: []string{"exclamation", "rhetorical_question"}},
		Meta:     types.FingerprintMeta{SampleWordCount: 420, SampleSentenceCount: 33},
	}
}

func assertBoxed(t *testing.T, output string) {
	t.Helper()
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
}

func TestPrintFingerprint(t *testing.T) {
	var buf bytes.Buffer
	fp := sampleFingerprint()
	NewPrinter(&buf).PrintFingerprint("FINGERPRINT", &fp)
	output := buf.String()

	assert.Contains(t, output, "FINGERPRINT")
	assert.Contains(t, output, "420 words, 33 sentences")
	assert.Contains(t, output, "contractions 8%")
	assert.Contains(t, output, "top: team, really, coffee")
	assert.Contains(t, output, "active 92%")
	assert.Contains(t, output, "emphasis: exclamation, rhetorical_question")
	assertBoxed(t, output)
}

func TestPrintFingerprint_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFingerprint("X", nil)
	assert.Empty(t, buf.String())
}

func TestPrintProfile(t *testing.T) {
	trained := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	profile := &types.VoiceProfile{
		UserID:          "user-1",
		Aggregate:       sampleFingerprint(),
		ConfidenceLevel: 42,
		DocumentCount:   2,
		TotalWordCount:  900,
		LastTrainedAt:   &trained,
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(profile)
	output := buf.String()

	assert.Contains(t, output, "VOICE PROFILE")
	assert.Contains(t, output, "Confidence:  42%")
	assert.Contains(t, output, "2026-05-01 09:30 UTC")
	assert.Contains(t, output, "AGGREGATE FINGERPRINT")
	assertBoxed(t, output)
}

func TestPrintProfile_EmptySkipsAggregate(t *testing.T) {
	empty := types.EmptyProfile("user-1")
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(&empty)

	assert.Contains(t, buf.String(), "Documents:   0")
	assert.NotContains(t, buf.String(), "AGGREGATE")
}

func TestPrintHistory_NewestFirst(t *testing.T) {
	history := make([]types.VoiceEvolution, 10)
	for i := range history {
		history[i] = types.VoiceEvolution{
			Timestamp:            time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
			SourceDocumentID:     "doc-" + string(rune('a'+i)),
			ConfidenceDelta:      3,
			ConfidenceLevelAfter: 10 + 3*i,
			TotalDocumentsAfter:  i + 1,
		}
	}
	history[9].ChangesMade = []string{"rhythm", "voice"}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintHistory(history)
	output := buf.String()

	assert.Less(t, strings.Index(output, "doc-j"), strings.Index(output, "doc-i"))
	assert.NotContains(t, output, "doc-a")
	assert.Contains(t, output, "... and 2 earlier")
	assert.Contains(t, output, "changed: rhythm, voice")
	assert.Contains(t, output, "(+3)")
	assertBoxed(t, output)
}

func TestPrintGenerationContext(t *testing.T) {
	gc := &types.GenerationContext{
		HasVoiceProfile: true,
		StudioType:      "career",
		Readiness: types.Readiness{
			IsReady: true,
			Score:   48,
			Tier:    types.TierDeveloping,
			Message: "Your voice profile is Developing (48%) and ready for career content.",
		},
		PromptInjection: "Write in the user's personal voice. The user:\n- Keeps sentences short",
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintGenerationContext(gc)
	output := buf.String()

	assert.Contains(t, output, "Score:       48% (Developing)")
	assert.Contains(t, output, "- Keeps sentences short")
	assertBoxed(t, output)
}

func TestPrintRewrite(t *testing.T) {
	res := &rewriting.Result{
		Text:           strings.Repeat("a fairly ordinary sentence goes here. ", 6),
		SourceWords:    36,
		RewrittenWords: 36,
		Attempts:       1,
		Tier:           "lite",
		Introduced:     []string{"synergy"},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintRewrite(res)
	output := buf.String()

	assert.Contains(t, output, "36 -> 36 (attempt 1, lite tier)")
	assert.Contains(t, output, "introduced synergy")
	assertBoxed(t, output)
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "ab...", pad("abcdefgh", 5))
	assert.Equal(t, "héllo", pad("héllo", 5))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Equal(t, []string{"a", "", "b"}, wrap("a\n\nb", 10))
}
