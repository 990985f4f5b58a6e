package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// SQLiteSchema is applied every time a SQLite store is opened.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS voice_profiles (
    user_id TEXT PRIMARY KEY,
    profile TEXT NOT NULL,
    confidence_level INTEGER NOT NULL DEFAULT 0,
    document_count INTEGER NOT NULL DEFAULT 0,
    total_word_count INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL,
    last_trained_at TEXT,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS voice_fingerprints (
    user_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    document_name TEXT NOT NULL DEFAULT '',
    writing_type TEXT NOT NULL DEFAULT '',
    learned_at TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    PRIMARY KEY (user_id, document_id)
);

CREATE INDEX IF NOT EXISTS idx_voice_fingerprints_sequence ON voice_fingerprints(user_id, sequence);

CREATE TABLE IF NOT EXISTS voice_evolution (
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    entry TEXT NOT NULL,
    PRIMARY KEY (user_id, position)
);
`

// SQLiteStore persists profiles in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(SQLiteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// LoadProfile implements Store.
func (s *SQLiteStore) LoadProfile(ctx context.Context, userID string) (VersionedProfile, error) {
	var data string
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT profile, version FROM voice_profiles WHERE user_id = ?`, userID,
	).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return VersionedProfile{Profile: types.EmptyProfile(userID)}, nil
	}
	if err != nil {
		return VersionedProfile{}, &PersistenceError{Message: "failed to load profile", Cause: err}
	}

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return VersionedProfile{}, err
	}
	profile, err := DecodeProfile([]byte(data), history)
	if err != nil {
		return VersionedProfile{}, &PersistenceError{Message: "failed to decode profile", Cause: err}
	}
	return VersionedProfile{Profile: profile, Version: version}, nil
}

func (s *SQLiteStore) loadHistory(ctx context.Context, userID string) ([]types.VoiceEvolution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM voice_evolution WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, &PersistenceError{Message: "failed to load evolution history", Cause: err}
	}
	defer rows.Close()

	var history []types.VoiceEvolution
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, &PersistenceError{Message: "failed to scan evolution entry", Cause: err}
		}
		entry, err := DecodeEvolution([]byte(data))
		if err != nil {
			return nil, &PersistenceError{Message: "failed to decode evolution entry", Cause: err}
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Message: "failed to iterate evolution history", Cause: err}
	}
	return history, nil
}

// ListFingerprints implements Store.
func (s *SQLiteStore) ListFingerprints(ctx context.Context, userID string) ([]types.DocumentFingerprint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, sequence, document_name, writing_type, learned_at, fingerprint
		 FROM voice_fingerprints WHERE user_id = ? ORDER BY sequence`, userID)
	if err != nil {
		return nil, &PersistenceError{Message: "failed to list fingerprints", Cause: err}
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
		return nil, &PersistenceError{Message: "failed to iterate fingerprints", Cause: err}
	}
	return docs, nil
}

// GetFingerprint implements Store.
func (s *SQLiteStore) GetFingerprint(ctx context.Context, userID, documentID string) (*types.DocumentFingerprint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT document_id, sequence, document_name, writing_type, learned_at, fingerprint
		 FROM voice_fingerprints WHERE user_id = ? AND document_id = ?`, userID, documentID)
	d, err := scanDocument(row, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner, userID string) (types.DocumentFingerprint, error) {
	d := types.DocumentFingerprint{UserID: userID}
	var learnedAt, data string
	if err := row.Scan(&d.DocumentID, &d.Sequence, &d.DocumentName, &d.WritingType, &learnedAt, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, err
		}
		return d, &PersistenceError{Message: "failed to scan fingerprint", Cause: err}
	}
	t, err := time.Parse(time.RFC3339Nano, learnedAt)
	if err != nil {
		return d, &PersistenceError{Message: "failed to parse learned_at", Cause: err}
	}
	d.LearnedAt = t.UTC()
	if d.Fingerprint, err = DecodeFingerprint([]byte(data)); err != nil {
		return d, &PersistenceError{Message: "failed to decode fingerprint", Cause: err}
	}
	return d, nil
}

// Commit implements Store.
func (s *SQLiteStore) Commit(ctx context.Context, m Mutation) (int64, error) {
	profileJSON, err := EncodeProfile(m.Profile)
	if err != nil {
		return 0, &PersistenceError{Message: "failed to encode profile", Cause: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &PersistenceError{Message: "begin tx", Cause: err}
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var lastTrained any
	if m.Profile.LastTrainedAt != nil {
		lastTrained = m.Profile.LastTrainedAt.UTC().Format(time.RFC3339Nano)
	}

	var res sql.Result
	if m.ExpectedVersion == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO voice_profiles (user_id, profile, confidence_level, document_count, total_word_count, version, last_trained_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 1, ?, ?)
			 ON CONFLICT(user_id) DO NOTHING`,
			m.UserID, string(profileJSON), m.Profile.ConfidenceLevel, m.Profile.DocumentCount, m.Profile.TotalWordCount, lastTrained, now)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE voice_profiles
			 SET profile = ?, confidence_level = ?, document_count = ?, total_word_count = ?,
			     version = version + 1, last_trained_at = ?, updated_at = ?
			 WHERE user_id = ? AND version = ?`,
			string(profileJSON), m.Profile.ConfidenceLevel, m.Profile.DocumentCount, m.Profile.TotalWordCount,
			lastTrained, now, m.UserID, m.ExpectedVersion)
	}
	if err != nil {
		return 0, &PersistenceError{Message: "failed to write profile", Cause: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, &PersistenceError{Message: "failed to read affected rows", Cause: err}
	}
	if affected == 0 {
		return 0, &ConflictError{UserID: m.UserID, ExpectedVersion: m.ExpectedVersion}
	}

	if m.DeleteAll {
		if _, err := tx.ExecContext(ctx, `DELETE FROM voice_fingerprints WHERE user_id = ?`, m.UserID); err != nil {
			return 0, &PersistenceError{Message: "failed to clear fingerprints", Cause: err}
		}
	}
	for _, id := range m.DeleteDocumentIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM voice_fingerprints WHERE user_id = ? AND document_id = ?`, m.UserID, id); err != nil {
			return 0, &PersistenceError{Message: "failed to delete fingerprint " + id, Cause: err}
		}
	}
	if d := m.PutFingerprint; d != nil {
		fpJSON, err := EncodeFingerprint(d.Fingerprint)
		if err != nil {
			return 0, &PersistenceError{Message: "failed to encode fingerprint", Cause: err}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO voice_fingerprints (user_id, document_id, sequence, document_name, writing_type, learned_at, fingerprint)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.UserID, d.DocumentID, d.Sequence, d.DocumentName, d.WritingType,
			d.LearnedAt.UTC().Format(time.RFC3339Nano), string(fpJSON)); err != nil {
			return 0, &PersistenceError{Message: "failed to insert fingerprint " + d.DocumentID, Cause: err}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM voice_evolution WHERE user_id = ? AND position >= ?`, m.UserID, m.HistoryFrom); err != nil {
		return 0, &PersistenceError{Message: "failed to trim evolution history", Cause: err}
	}
	for i, entry := range HistoryTail(m.Profile.EvolutionHistory, m.HistoryFrom) {
		data, err := EncodeEvolution(entry)
		if err != nil {
			return 0, &PersistenceError{Message: "failed to encode evolution entry", Cause: err}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO voice_evolution (user_id, position, entry) VALUES (?, ?, ?)`,
			m.UserID, m.HistoryFrom+i, string(data)); err != nil {
			return 0, &PersistenceError{Message: "failed to append evolution entry", Cause: err}
		}
	}

	var version int64
	if err := tx.QueryRowContext(ctx,
		`SELECT version FROM voice_profiles WHERE user_id = ?`, m.UserID).Scan(&version); err != nil {
		return 0, &PersistenceError{Message: "failed to read new version", Cause: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, &PersistenceError{Message: "commit tx", Cause: err}
	}
	return version, nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
