// Package store defines how voice profiles and their per-document
// fingerprints are persisted, and provides in-memory and SQLite backends.
// The PostgreSQL backend lives in internal/db.
package store

import (
	"context"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// VersionedProfile is a profile together with the version it was read at.
// Version 0 means no profile has been stored for the user yet.
type VersionedProfile struct {
	Profile types.VoiceProfile
	Version int64
}

// Mutation is everything one learn, forget or reset writes. Commit applies it
// atomically or not at all.
type Mutation struct {
	UserID string
	// Profile is the new profile, evolution history included.
	Profile types.VoiceProfile
	// ExpectedVersion must match the stored version for the commit to apply.
	ExpectedVersion int64
	// PutFingerprint, when set, is stored as a new contributing document.
	PutFingerprint *types.DocumentFingerprint
	// DeleteDocumentIDs are removed from the contributing documents.
	DeleteDocumentIDs []string
	// DeleteAll removes every contributing document of the user.
	DeleteAll bool
	// HistoryFrom is the first evolution position rewritten from Profile.
	// Stored entries before it are left untouched.
	HistoryFrom int
}

// Store persists voice profiles with optimistic versioning.
type Store interface {
	// LoadProfile returns the stored profile, or the empty profile at version 0.
	LoadProfile(ctx context.Context, userID string) (VersionedProfile, error)
	// ListFingerprints returns the user's contributing documents in sequence order.
	ListFingerprints(ctx context.Context, userID string) ([]types.DocumentFingerprint, error)
	// GetFingerprint returns one contributing document, or nil if absent.
	GetFingerprint(ctx context.Context, userID, documentID string) (*types.DocumentFingerprint, error)
	// Commit applies m and returns the new profile version. A stale
	// ExpectedVersion yields a *ConflictError and changes nothing.
	Commit(ctx context.Context, m Mutation) (int64, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// HistoryTail returns the entries of history at and after position from.
func HistoryTail(history []types.VoiceEvolution, from int) []types.VoiceEvolution {
	if from < 0 {
		from = 0
	}
	if from >= len(history) {
		return nil
	}
	return history[from:]
}
