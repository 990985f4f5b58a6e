package fingerprint

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/schemas"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

func TestDecode_RoundTripsExtraction(t *testing.T) {
	e := &Extractor{Clock: fixedClock}
	fp, err := e.Extract(casualText(300))
	require.NoError(t, err)

	data, err := json.Marshal(fp)
	require.NoError(t, err)

	decoded, err := Decode(data, DefaultMinWords)
	require.NoError(t, err)
	assert.Equal(t, fp, decoded)
}

func TestDecode_SchemaViolation(t *testing.T) {
	e := &Extractor{Clock: fixedClock}
	fp, err := e.Extract(casualText(300))
	require.NoError(t, err)
	fp.Voice.HedgeDensity = 3

	data, err := json.Marshal(fp)
	require.NoError(t, err)

	_, err = Decode(data, DefaultMinWords)
	var verr *schemas.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDecode_BelowMinimumSample(t *testing.T) {
	e := &Extractor{MinWords: 50, Clock: fixedClock}
	fp, err := e.Extract(casualText(60))
	require.NoError(t, err)

	data, err := json.Marshal(fp)
	require.NoError(t, err)

	_, err = Decode(data, DefaultMinWords)
	var ferr *types.FingerprintError
	assert.True(t, errors.As(err, &ferr))
}
