// Package storetest holds the behavioral checks every store.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/aggregate"
	"github.com/jonathan/voice-fingerprint/internal/store"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) store.Store

var learnedAt = time.Date(2024, 6, 1, 8, 30, 0, 123456000, time.UTC)

// Fingerprint returns a valid fingerprint whose fields all sit at level.
func Fingerprint(words int, level float64) types.Fingerprint {
	var fp types.Fingerprint
	for _, f := range types.NumericFields() {
		if f.Bounded {
			*f.Ref(&fp) = level
		} else {
			*f.Ref(&fp) = level * f.Scale
		}
	}
	fp.Vocabulary.TopWords = []string{"river", "coffee"}
	fp.Rhetoric.EmphasisPatterns = []string{}
	fp.Meta = types.FingerprintMeta{
		SampleWordCount:     words,
		SampleSentenceCount: words / 12,
		ExtractedAt:         learnedAt,
		SchemaVersion:       types.SchemaVersion,
	}
	return fp
}

// Document wraps Fingerprint as the seq-th contribution of userID.
func Document(userID, documentID string, seq int64, words int, level float64) types.DocumentFingerprint {
	return types.DocumentFingerprint{
		UserID:       userID,
		DocumentID:   documentID,
		DocumentName: documentID + ".md",
		WritingType:  "essay",
		Sequence:     seq,
		LearnedAt:    learnedAt.Add(time.Duration(seq) * time.Minute),
		Fingerprint:  Fingerprint(words, level),
	}
}

// Run executes the full suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("LoadAbsentProfile", func(t *testing.T) { testLoadAbsent(t, newStore(t)) })
	t.Run("LearnRoundTrip", func(t *testing.T) { testLearnRoundTrip(t, newStore(t)) })
	t.Run("StaleVersionConflicts", func(t *testing.T) { testStaleVersion(t, newStore(t)) })
	t.Run("ForgetRewritesHistory", func(t *testing.T) { testForget(t, newStore(t)) })
	t.Run("ResetClearsEverything", func(t *testing.T) { testReset(t, newStore(t)) })
	t.Run("UsersAreIsolated", func(t *testing.T) { testIsolation(t, newStore(t)) })
	t.Run("DuplicateFingerprintRejected", func(t *testing.T) { testDuplicate(t, newStore(t)) })
}

// learn fuses doc into the stored profile and commits it.
func learn(t *testing.T, s store.Store, doc types.DocumentFingerprint) (types.VoiceProfile, int64) {
	t.Helper()
	ctx := context.Background()
	current, err := s.LoadProfile(ctx, doc.UserID)
	require.NoError(t, err)
	prior, err := s.ListFingerprints(ctx, doc.UserID)
	require.NoError(t, err)

	next, err := (&aggregate.Aggregator{}).Learn(current.Profile, prior, doc)
	require.NoError(t, err)

	version, err := s.Commit(ctx, store.Mutation{
		UserID:          doc.UserID,
		Profile:         next,
		ExpectedVersion: current.Version,
		PutFingerprint:  &doc,
		HistoryFrom:     len(current.Profile.EvolutionHistory),
	})
	require.NoError(t, err)
	assert.Equal(t, current.Version+1, version)
	return next, version
}

func testLoadAbsent(t *testing.T, s store.Store) {
	got, err := s.LoadProfile(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Version)
	assert.Equal(t, types.EmptyProfile("nobody"), got.Profile)

	docs, err := s.ListFingerprints(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func testLearnRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	d1 := Document("u1", "doc-1", 1, 400, 0.2)
	d2 := Document("u1", "doc-2", 2, 900, 0.5)

	learn(t, s, d1)
	expected, version := learn(t, s, d2)

	got, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, version, got.Version)
	assert.Equal(t, expected, got.Profile)
	assert.Len(t, got.Profile.EvolutionHistory, 2)

	docs, err := s.ListFingerprints(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []types.DocumentFingerprint{d1, d2}, docs)

	one, err := s.GetFingerprint(ctx, "u1", "doc-2")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, d2, *one)

	missing, err := s.GetFingerprint(ctx, "u1", "doc-9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testStaleVersion(t *testing.T, s store.Store) {
	ctx := context.Background()
	first, _ := learn(t, s, Document("u1", "doc-1", 1, 400, 0.2))

	stale := Document("u1", "doc-2", 2, 400, 0.9)
	_, err := s.Commit(ctx, store.Mutation{
		UserID:          "u1",
		Profile:         types.EmptyProfile("u1"),
		ExpectedVersion: 0,
		PutFingerprint:  &stale,
	})
	var conflict *store.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)

	got, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, first, got.Profile)

	doc, err := s.GetFingerprint(ctx, "u1", "doc-2")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func testForget(t *testing.T, s store.Store) {
	ctx := context.Background()
	d1 := Document("u1", "doc-1", 1, 400, 0.2)
	d2 := Document("u1", "doc-2", 2, 900, 0.5)
	d3 := Document("u1", "doc-3", 3, 600, 0.3)
	learn(t, s, d1)
	learn(t, s, d2)
	learn(t, s, d3)

	current, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	docs, err := s.ListFingerprints(ctx, "u1")
	require.NoError(t, err)

	next, remaining, err := (&aggregate.Aggregator{}).Forget("u1", docs, "doc-2")
	require.NoError(t, err)
	version, err := s.Commit(ctx, store.Mutation{
		UserID:            "u1",
		Profile:           next,
		ExpectedVersion:   current.Version,
		DeleteDocumentIDs: []string{"doc-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)

	got, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, next, got.Profile)
	assert.Len(t, got.Profile.EvolutionHistory, 2)

	stored, err := s.ListFingerprints(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, remaining, stored)
}

func testReset(t *testing.T, s store.Store) {
	ctx := context.Background()
	learn(t, s, Document("u1", "doc-1", 1, 400, 0.2))
	learn(t, s, Document("u1", "doc-2", 2, 400, 0.4))

	current, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	_, err = s.Commit(ctx, store.Mutation{
		UserID:          "u1",
		Profile:         types.EmptyProfile("u1"),
		ExpectedVersion: current.Version,
		DeleteAll:       true,
	})
	require.NoError(t, err)

	got, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, types.EmptyProfile("u1"), got.Profile)
	assert.Equal(t, current.Version+1, got.Version)

	docs, err := s.ListFingerprints(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// a reset profile learns again from the zero-state
	learn(t, s, Document("u1", "doc-1", 1, 400, 0.2))
}

func testIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	learn(t, s, Document("u1", "doc-1", 1, 400, 0.2))
	learn(t, s, Document("u2", "doc-1", 1, 700, 0.6))

	p1, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	p2, err := s.LoadProfile(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 400, p1.Profile.TotalWordCount)
	assert.Equal(t, 700, p2.Profile.TotalWordCount)
	assert.Equal(t, int64(1), p1.Version)
	assert.Equal(t, int64(1), p2.Version)
}

func testDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	d1 := Document("u1", "doc-1", 1, 400, 0.2)
	learn(t, s, d1)

	current, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	_, err = s.Commit(ctx, store.Mutation{
		UserID:          "u1",
		Profile:         current.Profile,
		ExpectedVersion: current.Version,
		PutFingerprint:  &d1,
		HistoryFrom:     len(current.Profile.EvolutionHistory),
	})
	var persistErr *store.PersistenceError
	require.True(t, errors.As(err, &persistErr), "expected persistence error, got %v", err)

	got, err := s.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, current.Version, got.Version)
}
