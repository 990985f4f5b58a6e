package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesVoiceTables(t *testing.T) {
	for _, table := range []string{"voice_profiles", "voice_fingerprints", "voice_evolution"} {
		assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	creates := strings.Count(Schema, "CREATE TABLE") + strings.Count(Schema, "CREATE INDEX")
	assert.Equal(t, creates, strings.Count(Schema, "IF NOT EXISTS"))
}

func TestClose_NilPool(t *testing.T) {
	db := &DB{}
	assert.NoError(t, db.Close())
}
