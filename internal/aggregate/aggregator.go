// Package aggregate fuses document fingerprints into a per-user voice profile.
//
// Every operation is pure: it returns a new profile and never mutates its
// inputs, so a failed fusion can never leave a half-updated profile behind.
package aggregate

import (
	"math"
	"sort"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

const (
	// DefaultMaxDocumentShare caps the share of total fusion weight one document may take
	DefaultMaxDocumentShare = 0.4
	// MaterialityEpsilon is the normalized shift above which a field group counts as changed
	MaterialityEpsilon = 0.05
)

// Aggregator fuses fingerprints. The zero value uses DefaultMaxDocumentShare.
type Aggregator struct {
	MaxDocumentShare float64
}

// New creates an aggregator with the given per-document weight share.
func New(maxDocumentShare float64) *Aggregator {
	return &Aggregator{MaxDocumentShare: maxDocumentShare}
}

// Learn fuses next into profile. prior holds the fingerprints already
// contributing to profile and is only read for the consistency term.
// The document share cap applies when next is included, against the weight
// present at that time, not over the final set; the first document is uncapped.
func (a *Aggregator) Learn(profile types.VoiceProfile, prior []types.DocumentFingerprint, next types.DocumentFingerprint) (types.VoiceProfile, error) {
	if next.DocumentID == "" {
		return types.VoiceProfile{}, &FusionError{Message: "document id is required"}
	}
	for _, d := range prior {
		if d.DocumentID == next.DocumentID {
			return types.VoiceProfile{}, &DuplicateDocumentError{DocumentID: next.DocumentID}
		}
	}
	if err := next.Fingerprint.Validate(1); err != nil {
		return types.VoiceProfile{}, &FusionError{Message: "cannot fuse document " + next.DocumentID, Cause: err}
	}

	out := profile.Clone()
	words := next.Fingerprint.Meta.SampleWordCount
	oldWeight := profile.AggregateWeight
	weight := a.effectiveWeight(oldWeight, words)

	out.Aggregate = fuse(profile.Aggregate, next.Fingerprint, oldWeight, weight)
	out.Aggregate.Meta = types.FingerprintMeta{
		SampleWordCount:     profile.TotalWordCount + words,
		SampleSentenceCount: profile.Aggregate.Meta.SampleSentenceCount + next.Fingerprint.Meta.SampleSentenceCount,
		ExtractedAt:         next.LearnedAt,
		SchemaVersion:       types.SchemaVersion,
	}
	out.UserID = profile.UserID
	out.AggregateWeight = oldWeight + weight
	out.DocumentCount = profile.DocumentCount + 1
	out.TotalWordCount = profile.TotalWordCount + words
	learnedAt := next.LearnedAt
	out.LastTrainedAt = &learnedAt

	contributions := make([]types.Fingerprint, 0, len(prior)+1)
	for _, d := range prior {
		contributions = append(contributions, d.Fingerprint)
	}
	contributions = append(contributions, next.Fingerprint)
	out.ConfidenceLevel = Confidence(out.DocumentCount, out.TotalWordCount, Variance(out.Aggregate, contributions))

	out.EvolutionHistory = append(out.EvolutionHistory, types.VoiceEvolution{
		Timestamp:            next.LearnedAt,
		SourceDocumentID:     next.DocumentID,
		SourceDocumentName:   next.DocumentName,
		WritingType:          next.WritingType,
		ChangesMade:          ChangedGroups(profile.Aggregate, out.Aggregate),
		ConfidenceDelta:      out.ConfidenceLevel - profile.ConfidenceLevel,
		ConfidenceLevelAfter: out.ConfidenceLevel,
		TotalWordCountAfter:  out.TotalWordCount,
		TotalDocumentsAfter:  out.DocumentCount,
	})
	return out, nil
}

// Recompute rebuilds a profile from scratch by replaying Learn over docs in
// sequence order. An empty docs yields the empty profile.
func (a *Aggregator) Recompute(userID string, docs []types.DocumentFingerprint) (types.VoiceProfile, error) {
	ordered := make([]types.DocumentFingerprint, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	profile := types.EmptyProfile(userID)
	for i, d := range ordered {
		next, err := a.Learn(profile, ordered[:i], d)
		if err != nil {
			return types.VoiceProfile{}, err
		}
		profile = next
	}
	return profile, nil
}

// Forget removes documentID from the contributing set and recomputes the
// profile from the remaining fingerprints. It also returns that remaining set.
func (a *Aggregator) Forget(userID string, docs []types.DocumentFingerprint, documentID string) (types.VoiceProfile, []types.DocumentFingerprint, error) {
	remaining := make([]types.DocumentFingerprint, 0, len(docs))
	found := false
	for _, d := range docs {
		if d.DocumentID == documentID {
			found = true
			continue
		}
		remaining = append(remaining, d)
	}
	if !found {
		return types.VoiceProfile{}, nil, &DocumentNotFoundError{DocumentID: documentID}
	}
	if len(remaining) == 0 {
		return types.EmptyProfile(userID), remaining, nil
	}
	profile, err := a.Recompute(userID, remaining)
	if err != nil {
		return types.VoiceProfile{}, nil, err
	}
	return profile, remaining, nil
}

// Reset returns the zero-state profile of userID.
func (a *Aggregator) Reset(userID string) types.VoiceProfile {
	return types.EmptyProfile(userID)
}

// effectiveWeight caps a document's weight so that it holds at most the
// configured share of the combined weight. The first document is uncapped.
func (a *Aggregator) effectiveWeight(current float64, words int) float64 {
	w := float64(words)
	if current <= 0 {
		return w
	}
	share := a.MaxDocumentShare
	if share <= 0 || share >= 1 {
		share = DefaultMaxDocumentShare
	}
	return math.Min(w, current*share/(1-share))
}

func fuse(agg, fp types.Fingerprint, oldWeight, weight float64) types.Fingerprint {
	out := agg.Clone()
	for _, f := range types.NumericFields() {
		v := *f.Ref(&fp)
		if oldWeight <= 0 {
			*f.Ref(&out) = v
			continue
		}
		old := *f.Ref(&agg)
		fused := (old*oldWeight + v*weight) / (oldWeight + weight)
		if f.Bounded {
			fused = math.Min(math.Max(fused, 0), 1)
		}
		*f.Ref(&out) = fused
	}
	out.Vocabulary.TopWords = mergeRanked(agg.Vocabulary.TopWords, fp.Vocabulary.TopWords, oldWeight, weight, types.MaxTopWords)
	out.Rhetoric.EmphasisPatterns = mergeMembership(agg.Rhetoric.EmphasisPatterns, fp.Rhetoric.EmphasisPatterns, oldWeight, weight, types.MaxEmphasisPatterns)
	return out
}

// mergeRanked combines two ranked lists. Each entry scores its side's weight
// times a linear rank score; ties keep the old list's order, then the new one's.
func mergeRanked(old, next []string, oldWeight, weight float64, limit int) []string {
	scores := make(map[string]float64)
	var order []string
	add := func(list []string, w float64) {
		for rank, item := range list {
			if _, seen := scores[item]; !seen {
				order = append(order, item)
			}
			scores[item] += w * float64(limit-rank) / float64(limit)
		}
	}
	add(old, oldWeight)
	add(next, weight)

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// mergeMembership combines two sets, scoring each member by the weight of the
// sides it appears in. Ties are broken by name.
func mergeMembership(old, next []string, oldWeight, weight float64, limit int) []string {
	scores := make(map[string]float64)
	for _, item := range old {
		scores[item] += oldWeight
	}
	for _, item := range next {
		scores[item] += weight
	}
	out := make([]string, 0, len(scores))
	for item := range scores {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if scores[out[i]] != scores[out[j]] {
			return scores[out[i]] > scores[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ChangedGroups lists, in report order, the field groups in which some field
// shifted by more than MaterialityEpsilon of its scale.
func ChangedGroups(before, after types.Fingerprint) []string {
	moved := make(map[string]bool)
	for _, f := range types.NumericFields() {
		if math.Abs(*f.Ref(&after)-*f.Ref(&before))/f.Scale > MaterialityEpsilon {
			moved[f.Group] = true
		}
	}
	changes := []string{}
	for _, g := range types.Groups {
		if moved[g] {
			changes = append(changes, g)
		}
	}
	return changes
}
