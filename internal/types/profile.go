package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// VoiceProfile is the durable per-user style model. It is created lazily in its
// empty state, changed only by learn/forget, and reset instead of deleted.
type VoiceProfile struct {
	UserID    string      `json:"user_id"`
	Aggregate Fingerprint `json:"aggregate_fingerprint"`
	// AggregateWeight is the total effective fusion weight behind Aggregate.
	// It differs from TotalWordCount once per-document weight capping applies.
	AggregateWeight  float64          `json:"aggregate_weight"`
	ConfidenceLevel  int              `json:"confidence_level"`
	DocumentCount    int              `json:"document_count"`
	TotalWordCount   int              `json:"total_word_count"`
	LastTrainedAt    *time.Time       `json:"last_trained_at,omitempty"`
	EvolutionHistory []VoiceEvolution `json:"evolution_history"`
}

// EmptyProfile returns the zero-state profile of a user.
func EmptyProfile(userID string) VoiceProfile {
	return VoiceProfile{UserID: userID}
}

// IsEmpty reports whether no document contributes to the profile.
func (p *VoiceProfile) IsEmpty() bool {
	return p.DocumentCount == 0
}

// Clone returns a deep copy of the profile.
func (p VoiceProfile) Clone() VoiceProfile {
	out := p
	out.Aggregate = p.Aggregate.Clone()
	if p.LastTrainedAt != nil {
		t := *p.LastTrainedAt
		out.LastTrainedAt = &t
	}
	if p.EvolutionHistory != nil {
		out.EvolutionHistory = make([]VoiceEvolution, len(p.EvolutionHistory))
		for i, e := range p.EvolutionHistory {
			out.EvolutionHistory[i] = e.Clone()
		}
	}
	return out
}

// VoiceEvolution records one successful learn event.
type VoiceEvolution struct {
	Timestamp            time.Time `json:"timestamp"`
	SourceDocumentID     string    `json:"source_document_id"`
	SourceDocumentName   string    `json:"source_document_name"`
	WritingType          string    `json:"writing_type"`
	ChangesMade          []string  `json:"changes_made"`
	ConfidenceDelta      int       `json:"confidence_delta"`
	ConfidenceLevelAfter int       `json:"confidence_level_after"`
	TotalWordCountAfter  int       `json:"total_word_count_after"`
	TotalDocumentsAfter  int       `json:"total_documents_after"`
}

// Clone returns a deep copy of the entry.
func (e VoiceEvolution) Clone() VoiceEvolution {
	out := e
	if e.ChangesMade != nil {
		out.ChangesMade = append([]string(nil), e.ChangesMade...)
	}
	return out
}

// DocumentFingerprint is the retained fingerprint of one contributing document.
type DocumentFingerprint struct {
	UserID       string `json:"user_id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	WritingType  string `json:"writing_type"`
	// Sequence orders contributions per user; fusion is replayed in this order.
	Sequence    int64       `json:"sequence"`
	LearnedAt   time.Time   `json:"learned_at"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// DocumentMeta describes a document handed to extract/learn by the upload pipeline.
type DocumentMeta struct {
	DocumentID  string `json:"document_id" validate:"required,max=255"`
	FileName    string `json:"file_name" validate:"max=512"`
	WritingType string `json:"writing_type" validate:"max=64"`
	// WordCount is the caller's own estimate; the extractor counts independently.
	WordCount int `json:"word_count" validate:"min=0"`
}

// Validate validates the DocumentMeta using the validator.
func (m *DocumentMeta) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}
