package db

import (
	"context"
	"fmt"
)

// Schema creates the voice profile tables. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS voice_profiles (
    user_id TEXT PRIMARY KEY,
    profile JSONB NOT NULL,
    confidence_level INTEGER NOT NULL DEFAULT 0,
    document_count INTEGER NOT NULL DEFAULT 0,
    total_word_count INTEGER NOT NULL DEFAULT 0,
    version BIGINT NOT NULL,
    last_trained_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS voice_fingerprints (
    user_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    sequence BIGINT NOT NULL,
    document_name TEXT NOT NULL DEFAULT '',
    writing_type TEXT NOT NULL DEFAULT '',
    learned_at TIMESTAMPTZ NOT NULL,
    fingerprint JSONB NOT NULL,
    PRIMARY KEY (user_id, document_id)
);

CREATE INDEX IF NOT EXISTS idx_voice_fingerprints_sequence ON voice_fingerprints(user_id, sequence);

CREATE TABLE IF NOT EXISTS voice_evolution (
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    entry JSONB NOT NULL,
    PRIMARY KEY (user_id, position)
);
`

// Migrate applies Schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
