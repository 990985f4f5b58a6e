package store

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/voice-fingerprint/internal/types"
)

// EncodeProfile serializes a profile without its evolution history, which
// backends keep in their own rows.
func EncodeProfile(p types.VoiceProfile) ([]byte, error) {
	p.EvolutionHistory = nil
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	return data, nil
}

// DecodeProfile restores a profile written by EncodeProfile and attaches history.
func DecodeProfile(data []byte, history []types.VoiceEvolution) (types.VoiceProfile, error) {
	var p types.VoiceProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return types.VoiceProfile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	p.EvolutionHistory = history
	return p, nil
}

// EncodeEvolution serializes one evolution entry.
func EncodeEvolution(e types.VoiceEvolution) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evolution entry: %w", err)
	}
	return data, nil
}

// DecodeEvolution restores an evolution entry.
func DecodeEvolution(data []byte) (types.VoiceEvolution, error) {
	var e types.VoiceEvolution
	if err := json.Unmarshal(data, &e); err != nil {
		return types.VoiceEvolution{}, fmt.Errorf("failed to unmarshal evolution entry: %w", err)
	}
	return e, nil
}

// EncodeFingerprint serializes a fingerprint.
func EncodeFingerprint(fp types.Fingerprint) ([]byte, error) {
	data, err := json.Marshal(fp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fingerprint: %w", err)
	}
	return data, nil
}

// DecodeFingerprint restores a fingerprint.
func DecodeFingerprint(data []byte) (types.Fingerprint, error) {
	var fp types.Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		return types.Fingerprint{}, fmt.Errorf("failed to unmarshal fingerprint: %w", err)
	}
	return fp, nil
}
