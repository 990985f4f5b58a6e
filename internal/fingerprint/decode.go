package fingerprint

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/voice-fingerprint/internal/schemas"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

// Decode parses a fingerprint exported by another instance or computed
// client-side. The document must match the fingerprint schema and carry at
// least minWords words of sample.
func Decode(data []byte, minWords int) (types.Fingerprint, error) {
	if err := schemas.Validate(schemas.Fingerprint, data); err != nil {
		return types.Fingerprint{}, err
	}

	var fp types.Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		return types.Fingerprint{}, fmt.Errorf("failed to decode fingerprint: %w", err)
	}
	if err := fp.Validate(minWords); err != nil {
		return types.Fingerprint{}, err
	}
	fp.Meta.ExtractedAt = fp.Meta.ExtractedAt.UTC()
	return fp, nil
}
