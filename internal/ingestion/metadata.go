package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/voice-fingerprint/internal/segment"
)

// Metadata describes an ingested writing sample.
type Metadata struct {
	FileName  string `json:"file_name"`
	Format    Format `json:"format"`
	Timestamp string `json:"timestamp"` // RFC3339 format
	Hash      string `json:"hash"`      // SHA256 hex digest of the cleaned text
	WordCount int    `json:"word_count"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content, fileName string, format Format) *Metadata {
	return &Metadata{
		FileName:  fileName,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		WordCount: segment.CountWords(content),
	}
}

// DocumentID derives a stable id from the content hash, so uploading the
// same text twice is caught as a duplicate.
func (m *Metadata) DocumentID() string {
	return "doc-" + m.Hash[:16]
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
