package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/voice-fingerprint/internal/store"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

var _ store.Store = (*DB)(nil)

// LoadProfile retrieves a user's profile and its version.
// Returns the empty profile at version 0 if none is stored.
func (db *DB) LoadProfile(ctx context.Context, userID string) (store.VersionedProfile, error) {
	var data []byte
	var version int64
	err := db.pool.QueryRow(ctx,
		`SELECT profile, version FROM voice_profiles WHERE user_id = $1`, userID,
	).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.VersionedProfile{Profile: types.EmptyProfile(userID)}, nil
	}
	if err != nil {
		return store.VersionedProfile{}, &store.PersistenceError{Message: "failed to get profile", Cause: err}
	}

	history, err := db.loadHistory(ctx, userID)
	if err != nil {
		return store.VersionedProfile{}, err
	}
	profile, err := store.DecodeProfile(data, history)
	if err != nil {
		return store.VersionedProfile{}, &store.PersistenceError{Message: "failed to decode profile", Cause: err}
	}
	return store.VersionedProfile{Profile: profile, Version: version}, nil
}

func (db *DB) loadHistory(ctx context.Context, userID string) ([]types.VoiceEvolution, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT entry FROM voice_evolution WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, &store.PersistenceError{Message: "failed to query evolution history", Cause: err}
	}
	defer rows.Close()

	var history []types.VoiceEvolution
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, &store.PersistenceError{Message: "failed to scan evolution entry", Cause: err}
		}
		entry, err := store.DecodeEvolution(data)
		if err != nil {
			return nil, &store.PersistenceError{Message: "failed to decode evolution entry", Cause: err}
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Message: "error iterating evolution history", Cause: err}
	}
	return history, nil
}

// ListFingerprints retrieves all contributing documents of a user in sequence order
func (db *DB) ListFingerprints(ctx context.Context, userID string) ([]types.DocumentFingerprint, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT document_id, sequence, document_name, writing_type, learned_at, fingerprint
		 FROM voice_fingerprints WHERE user_id = $1 ORDER BY sequence`, userID)
	if err != nil {
		return nil, &store.PersistenceError{Message: "failed to list fingerprints", Cause: err}
	}
	defer rows.Close()

	var docs []types.DocumentFingerprint
	for rows.Next() {
		d, err := scanDocument(rows, userID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.PersistenceError{Message: "error iterating fingerprints", Cause: err}
	}
	return docs, nil
}

// GetFingerprint retrieves one contributing document.
// Returns nil, nil if not found.
func (db *DB) GetFingerprint(ctx context.Context, userID, documentID string) (*types.DocumentFingerprint, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT document_id, sequence, document_name, writing_type, learned_at, fingerprint
		 FROM voice_fingerprints WHERE user_id = $1 AND document_id = $2`, userID, documentID)
	d, err := scanDocument(row, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDocument(row pgx.Row, userID string) (types.DocumentFingerprint, error) {
	d := types.DocumentFingerprint{UserID: userID}
	var learnedAt time.Time
	var data []byte
	if err := row.Scan(&d.DocumentID, &d.Sequence, &d.DocumentName, &d.WritingType, &learnedAt, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return d, err
		}
		return d, &store.PersistenceError{Message: "failed to scan fingerprint", Cause: err}
	}
	d.LearnedAt = learnedAt.UTC()
	fp, err := store.DecodeFingerprint(data)
	if err != nil {
		return d, &store.PersistenceError{Message: "failed to decode fingerprint", Cause: err}
	}
	d.Fingerprint = fp
	return d, nil
}

// Commit writes a profile mutation in one transaction, guarded by the profile version
func (db *DB) Commit(ctx context.Context, m store.Mutation) (int64, error) {
	profileJSON, err := store.EncodeProfile(m.Profile)
	if err != nil {
		return 0, &store.PersistenceError{Message: "failed to encode profile", Cause: err}
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, &store.PersistenceError{Message: "failed to begin transaction", Cause: err}
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			_ = rErr
		}
	}()

	var version int64
	if m.ExpectedVersion == 0 {
		err = tx.QueryRow(ctx,
			`INSERT INTO voice_profiles (user_id, profile, confidence_level, document_count, total_word_count, version, last_trained_at)
			 VALUES ($1, $2, $3, $4, $5, 1, $6)
			 ON CONFLICT (user_id) DO NOTHING
			 RETURNING version`,
			m.UserID, profileJSON, m.Profile.ConfidenceLevel, m.Profile.DocumentCount, m.Profile.TotalWordCount, m.Profile.LastTrainedAt,
		).Scan(&version)
	} else {
		err = tx.QueryRow(ctx,
			`UPDATE voice_profiles
			 SET profile = $2, confidence_level = $3, document_count = $4, total_word_count = $5,
			     version = version + 1, last_trained_at = $6, updated_at = NOW()
			 WHERE user_id = $1 AND version = $7
			 RETURNING version`,
			m.UserID, profileJSON, m.Profile.ConfidenceLevel, m.Profile.DocumentCount, m.Profile.TotalWordCount,
			m.Profile.LastTrainedAt, m.ExpectedVersion,
		).Scan(&version)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &store.ConflictError{UserID: m.UserID, ExpectedVersion: m.ExpectedVersion}
	}
	if err != nil {
		return 0, &store.PersistenceError{Message: "failed to write profile", Cause: err}
	}

	if m.DeleteAll {
		if _, err := tx.Exec(ctx, `DELETE FROM voice_fingerprints WHERE user_id = $1`, m.UserID); err != nil {
			return 0, &store.PersistenceError{Message: "failed to clear fingerprints", Cause: err}
		}
	}
	if len(m.DeleteDocumentIDs) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM voice_fingerprints WHERE user_id = $1 AND document_id = ANY($2)`,
			m.UserID, m.DeleteDocumentIDs); err != nil {
			return 0, &store.PersistenceError{Message: "failed to delete fingerprints", Cause: err}
		}
	}
	if d := m.PutFingerprint; d != nil {
		fpJSON, err := store.EncodeFingerprint(d.Fingerprint)
		if err != nil {
			return 0, &store.PersistenceError{Message: "failed to encode fingerprint", Cause: err}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO voice_fingerprints (user_id, document_id, sequence, document_name, writing_type, learned_at, fingerprint)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.UserID, d.DocumentID, d.Sequence, d.DocumentName, d.WritingType, d.LearnedAt, fpJSON); err != nil {
			return 0, &store.PersistenceError{Message: fmt.Sprintf("failed to insert fingerprint %s", d.DocumentID), Cause: err}
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM voice_evolution WHERE user_id = $1 AND position >= $2`, m.UserID, m.HistoryFrom); err != nil {
		return 0, &store.PersistenceError{Message: "failed to trim evolution history", Cause: err}
	}
	for i, entry := range store.HistoryTail(m.Profile.EvolutionHistory, m.HistoryFrom) {
		data, err := store.EncodeEvolution(entry)
		if err != nil {
			return 0, &store.PersistenceError{Message: "failed to encode evolution entry", Cause: err}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO voice_evolution (user_id, position, entry) VALUES ($1, $2, $3)`,
			m.UserID, m.HistoryFrom+i, data); err != nil {
			return 0, &store.PersistenceError{Message: "failed to append evolution entry", Cause: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &store.PersistenceError{Message: "failed to commit transaction", Cause: err}
	}
	return version, nil
}
