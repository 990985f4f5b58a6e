package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

type memoryRecord struct {
	profile types.VoiceProfile
	version int64
	docs    map[string]types.DocumentFingerprint
}

// MemoryStore keeps everything in process memory. It is meant for tests and
// dry runs; every value crossing its boundary is deep-copied.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*memoryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memoryRecord)}
}

// LoadProfile implements Store.
func (s *MemoryStore) LoadProfile(_ context.Context, userID string) (VersionedProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[userID]
	if !ok {
		return VersionedProfile{Profile: types.EmptyProfile(userID)}, nil
	}
	return VersionedProfile{Profile: rec.profile.Clone(), Version: rec.version}, nil
}

// ListFingerprints implements Store.
func (s *MemoryStore) ListFingerprints(_ context.Context, userID string) ([]types.DocumentFingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	out := make([]types.DocumentFingerprint, 0, len(rec.docs))
	for _, d := range rec.docs {
		out = append(out, cloneDocument(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// GetFingerprint implements Store.
func (s *MemoryStore) GetFingerprint(_ context.Context, userID, documentID string) (*types.DocumentFingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	d, ok := rec.docs[documentID]
	if !ok {
		return nil, nil
	}
	out := cloneDocument(d)
	return &out, nil
}

// Commit implements Store.
func (s *MemoryStore) Commit(_ context.Context, m Mutation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[m.UserID]
	current := int64(0)
	if ok {
		current = rec.version
	}
	if current != m.ExpectedVersion {
		return 0, &ConflictError{UserID: m.UserID, ExpectedVersion: m.ExpectedVersion}
	}
	if m.PutFingerprint != nil && ok {
		if _, exists := rec.docs[m.PutFingerprint.DocumentID]; exists {
			return 0, &PersistenceError{Message: "fingerprint " + m.PutFingerprint.DocumentID + " already stored"}
		}
	}

	// build the new record off to the side so a failure leaves nothing behind
	next := &memoryRecord{
		profile: m.Profile.Clone(),
		version: current + 1,
		docs:    make(map[string]types.DocumentFingerprint),
	}
	next.profile.UserID = m.UserID
	if ok && !m.DeleteAll {
		for id, d := range rec.docs {
			next.docs[id] = d
		}
	}
	for _, id := range m.DeleteDocumentIDs {
		delete(next.docs, id)
	}
	if m.PutFingerprint != nil {
		next.docs[m.PutFingerprint.DocumentID] = cloneDocument(*m.PutFingerprint)
	}
	s.users[m.UserID] = next
	return next.version, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

func cloneDocument(d types.DocumentFingerprint) types.DocumentFingerprint {
	d.Fingerprint = d.Fingerprint.Clone()
	return d
}
