package aggregate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// makeFingerprint sets every bounded field to level and every other field to
// level times its scale.
func makeFingerprint(words int, level float64, topWords, emphasis []string) types.Fingerprint {
	var fp types.Fingerprint
	for _, f := range types.NumericFields() {
		if f.Bounded {
			*f.Ref(&fp) = level
		} else {
			*f.Ref(&fp) = level * f.Scale
		}
	}
	fp.Vocabulary.TopWords = topWords
	fp.Rhetoric.EmphasisPatterns = emphasis
	fp.Meta = types.FingerprintMeta{
		SampleWordCount:     words,
		SampleSentenceCount: words / 10,
		ExtractedAt:         baseTime,
		SchemaVersion:       types.SchemaVersion,
	}
	return fp
}

func makeDoc(id string, seq int64, fp types.Fingerprint) types.DocumentFingerprint {
	return types.DocumentFingerprint{
		UserID:       "user-1",
		DocumentID:   id,
		DocumentName: id + ".txt",
		WritingType:  "blog",
		Sequence:     seq,
		LearnedAt:    baseTime.Add(time.Duration(seq) * time.Hour),
		Fingerprint:  fp,
	}
}

func learnAll(t *testing.T, a *Aggregator, docs ...types.DocumentFingerprint) types.VoiceProfile {
	t.Helper()
	profile := types.EmptyProfile("user-1")
	for i, d := range docs {
		next, err := a.Learn(profile, docs[:i], d)
		require.NoError(t, err)
		profile = next
	}
	return profile
}

func TestLearn_FirstDocument(t *testing.T) {
	a := &Aggregator{}
	fp := makeFingerprint(400, 0.3, []string{"coffee", "river"}, []string{"ellipsis"})
	doc := makeDoc("doc-1", 1, fp)

	profile, err := a.Learn(types.EmptyProfile("user-1"), nil, doc)
	require.NoError(t, err)

	assert.Equal(t, 1, profile.DocumentCount)
	assert.Equal(t, 400, profile.TotalWordCount)
	assert.Equal(t, 400.0, profile.AggregateWeight)
	for _, f := range types.NumericFields() {
		assert.Equal(t, *f.Ref(&fp), *f.Ref(&profile.Aggregate), f.Name)
	}
	assert.Equal(t, []string{"coffee", "river"}, profile.Aggregate.Vocabulary.TopWords)
	assert.Equal(t, []string{"ellipsis"}, profile.Aggregate.Rhetoric.EmphasisPatterns)
	require.NotNil(t, profile.LastTrainedAt)
	assert.Equal(t, doc.LearnedAt, *profile.LastTrainedAt)

	require.Len(t, profile.EvolutionHistory, 1)
	entry := profile.EvolutionHistory[0]
	assert.Equal(t, "doc-1", entry.SourceDocumentID)
	assert.Equal(t, "doc-1.txt", entry.SourceDocumentName)
	assert.Equal(t, types.Groups, entry.ChangesMade)
	assert.Equal(t, profile.ConfidenceLevel, entry.ConfidenceDelta)
	assert.Equal(t, 1, entry.TotalDocumentsAfter)
	assert.Equal(t, 400, entry.TotalWordCountAfter)
}

func TestLearn_CounterArithmetic(t *testing.T) {
	a := &Aggregator{}
	docs := []types.DocumentFingerprint{
		makeDoc("a", 1, makeFingerprint(150, 0.2, nil, nil)),
		makeDoc("b", 2, makeFingerprint(900, 0.5, nil, nil)),
		makeDoc("c", 3, makeFingerprint(320, 0.4, nil, nil)),
	}

	profile := types.EmptyProfile("user-1")
	for i, d := range docs {
		next, err := a.Learn(profile, docs[:i], d)
		require.NoError(t, err)

		assert.Equal(t, profile.DocumentCount+1, next.DocumentCount)
		assert.Equal(t, profile.TotalWordCount+d.Fingerprint.Meta.SampleWordCount, next.TotalWordCount)
		assert.Len(t, next.EvolutionHistory, next.DocumentCount)
		assert.GreaterOrEqual(t, next.ConfidenceLevel, 0)
		assert.LessOrEqual(t, next.ConfidenceLevel, 100)
		profile = next
	}
	assert.Equal(t, 1370, profile.Aggregate.Meta.SampleWordCount)
}

func TestLearn_DoesNotMutateInput(t *testing.T) {
	a := &Aggregator{}
	first := makeDoc("a", 1, makeFingerprint(300, 0.2, []string{"alpha"}, []string{"all_caps"}))
	profile := learnAll(t, a, first)
	snapshot := profile.Clone()

	_, err := a.Learn(profile, []types.DocumentFingerprint{first}, makeDoc("b", 2, makeFingerprint(300, 0.8, []string{"beta"}, nil)))
	require.NoError(t, err)
	assert.Equal(t, snapshot, profile)
}

func TestLearn_CapsDocumentShare(t *testing.T) {
	a := &Aggregator{}
	first := makeDoc("a", 1, makeFingerprint(1000, 0.1, nil, nil))
	profile := learnAll(t, a, first)

	huge := makeDoc("b", 2, makeFingerprint(5000, 0.6, nil, nil))
	next, err := a.Learn(profile, []types.DocumentFingerprint{first}, huge)
	require.NoError(t, err)

	capped := 1000 * 0.4 / 0.6
	assert.InDelta(t, 1000+capped, next.AggregateWeight, 1e-9)
	assert.Equal(t, 6000, next.TotalWordCount)
	// the long document moves the aggregate exactly 40% of the way
	assert.InDelta(t, 0.1+0.4*(0.6-0.1), next.Aggregate.Voice.FormalityScore, 1e-9)
}

func TestLearn_DuplicateDocument(t *testing.T) {
	a := &Aggregator{}
	first := makeDoc("a", 1, makeFingerprint(300, 0.2, nil, nil))
	profile := learnAll(t, a, first)

	_, err := a.Learn(profile, []types.DocumentFingerprint{first}, makeDoc("a", 2, makeFingerprint(300, 0.2, nil, nil)))
	var dup *DuplicateDocumentError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a", dup.DocumentID)
}

func TestLearn_InvalidFingerprint(t *testing.T) {
	a := &Aggregator{}
	fp := makeFingerprint(300, 0.2, nil, nil)
	fp.Voice.HedgeDensity = math.NaN()

	_, err := a.Learn(types.EmptyProfile("user-1"), nil, makeDoc("a", 1, fp))
	var fusionErr *FusionError
	require.True(t, errors.As(err, &fusionErr))
	var fpErr *types.FingerprintError
	assert.True(t, errors.As(err, &fpErr))
	assert.Equal(t, "hedge_density", fpErr.Field)
}

func TestLearn_ConfidenceNonDecreasingUnderConsistentEvidence(t *testing.T) {
	a := &Aggregator{}
	profile := types.EmptyProfile("user-1")
	var docs []types.DocumentFingerprint
	previous := 0
	for i := 1; i <= 12; i++ {
		d := makeDoc(string(rune('a'+i)), int64(i), makeFingerprint(250, 0.3, []string{"river"}, nil))
		next, err := a.Learn(profile, docs, d)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, next.ConfidenceLevel, previous)
		assert.LessOrEqual(t, next.ConfidenceLevel, 100)
		previous = next.ConfidenceLevel
		docs = append(docs, d)
		profile = next
	}
	assert.Equal(t, 12, profile.DocumentCount)
}

func TestLearn_InconsistentEvidenceScoresLower(t *testing.T) {
	a := &Aggregator{}
	consistent := learnAll(t, a,
		makeDoc("a", 1, makeFingerprint(1000, 0.3, nil, nil)),
		makeDoc("b", 2, makeFingerprint(1000, 0.3, nil, nil)),
	)
	erratic := learnAll(t, a,
		makeDoc("a", 1, makeFingerprint(1000, 0.05, nil, nil)),
		makeDoc("b", 2, makeFingerprint(1000, 0.95, nil, nil)),
	)
	assert.Greater(t, consistent.ConfidenceLevel, erratic.ConfidenceLevel)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name      string
		documents int
		words     int
		variance  float64
		expected  int
	}{
		{"no documents", 0, 0, 0, 0},
		{"one short document", 1, 200, 0, 28},
		{"three documents", 3, 3000, 0, 75},
		{"saturated", 50, 1000000, 0, 100},
		{"negative variance treated as zero", 3, 3000, -1, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Confidence(tt.documents, tt.words, tt.variance))
		})
	}
	assert.Less(t, Confidence(3, 3000, 0.5), Confidence(3, 3000, 0))
}

func TestReset_EqualsNewProfile(t *testing.T) {
	a := &Aggregator{}
	learned := learnAll(t, a, makeDoc("a", 1, makeFingerprint(300, 0.2, []string{"x"}, nil)))
	require.False(t, learned.IsEmpty())

	assert.Equal(t, types.EmptyProfile("user-1"), a.Reset(learned.UserID))
}

func TestForget_SoleDocumentEqualsReset(t *testing.T) {
	a := &Aggregator{}
	doc := makeDoc("a", 1, makeFingerprint(300, 0.2, []string{"x"}, []string{"all_caps"}))
	learned := learnAll(t, a, doc)

	forgotten, remaining, err := a.Forget(learned.UserID, []types.DocumentFingerprint{doc}, "a")
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, a.Reset(learned.UserID), forgotten)
}

func TestForget_EqualsLearningRemainingDocuments(t *testing.T) {
	a := &Aggregator{}
	d1 := makeDoc("a", 1, makeFingerprint(400, 0.2, []string{"river", "coffee"}, []string{"ellipsis"}))
	d2 := makeDoc("b", 2, makeFingerprint(1200, 0.7, []string{"budget", "river"}, []string{"all_caps"}))
	d3 := makeDoc("c", 3, makeFingerprint(600, 0.4, []string{"coffee", "walk"}, nil))

	forgotten, remaining, err := a.Forget("user-1", []types.DocumentFingerprint{d1, d2, d3}, "b")
	require.NoError(t, err)
	assert.Equal(t, []types.DocumentFingerprint{d1, d3}, remaining)

	expected := learnAll(t, a, d1, d3)
	assert.Equal(t, expected, forgotten)
	assert.Len(t, forgotten.EvolutionHistory, forgotten.DocumentCount)
	assert.Equal(t, 1000, forgotten.TotalWordCount)
}

func TestForget_UnknownDocument(t *testing.T) {
	a := &Aggregator{}
	doc := makeDoc("a", 1, makeFingerprint(300, 0.2, nil, nil))

	_, _, err := a.Forget("user-1", []types.DocumentFingerprint{doc}, "missing")
	var notFound *DocumentNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.DocumentID)
}

func TestRecompute_ReplaysInSequenceOrder(t *testing.T) {
	a := &Aggregator{}
	d1 := makeDoc("a", 1, makeFingerprint(300, 0.1, []string{"one"}, nil))
	d2 := makeDoc("b", 2, makeFingerprint(300, 0.9, []string{"two"}, nil))

	shuffled, err := a.Recompute("user-1", []types.DocumentFingerprint{d2, d1})
	require.NoError(t, err)
	assert.Equal(t, learnAll(t, a, d1, d2), shuffled)

	empty, err := a.Recompute("user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, types.EmptyProfile("user-1"), empty)
}

func TestChangedGroups(t *testing.T) {
	before := makeFingerprint(300, 0.3, nil, nil)
	after := before.Clone()
	after.Punctuation.SemicolonRate += 20
	after.Voice.HedgeDensity += 0.01

	assert.Equal(t, []string{types.GroupPunctuation}, ChangedGroups(before, after))
	assert.Empty(t, ChangedGroups(before, before))
}

func TestMergeRanked(t *testing.T) {
	merged := mergeRanked([]string{"a", "b"}, []string{"b", "c"}, 100, 100, 20)
	assert.Equal(t, []string{"b", "a", "c"}, merged)

	// a dominant history keeps its order ahead of a light newcomer
	merged = mergeRanked([]string{"x", "y"}, []string{"z"}, 1000, 10, 20)
	assert.Equal(t, []string{"x", "y", "z"}, merged)

	merged = mergeRanked([]string{"a", "b", "c"}, nil, 1, 1, 2)
	assert.Equal(t, []string{"a", "b"}, merged)
}

func TestMergeMembership(t *testing.T) {
	merged := mergeMembership([]string{"ellipsis", "all_caps"}, []string{"all_caps", "bold_markup"}, 10, 5, 8)
	assert.Equal(t, []string{"all_caps", "ellipsis", "bold_markup"}, merged)
}
