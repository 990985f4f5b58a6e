package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_RewritePrompt(t *testing.T) {
	prompt, err := Get(VoiceFile, "rewrite-in-voice")
	require.NoError(t, err)
	for _, placeholder := range []string{"VoiceProfile", "Studio", "TolerancePercent", "SourceWords", "Text"} {
		assert.Contains(t, prompt, "{{."+placeholder+"}}")
	}
}

func TestGet_Missing(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.ErrorContains(t, err, "prompt file nonexistent.json not found")

	_, err = Get(VoiceFile, "nonexistent-key")
	assert.ErrorContains(t, err, `prompt key "nonexistent-key" not found`)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{"single", "Hello {{.Name}}", map[string]string{"Name": "Ada"}, "Hello Ada"},
		{"repeated", "{{.A}} and {{.A}}", map[string]string{"A": "x"}, "x and x"},
		{"unknown kept", "{{.A}} {{.B}}", map[string]string{"A": "x"}, "x {{.B}}"},
		{"value not re-expanded", "{{.A}}", map[string]string{"A": "{{.B}}", "B": "y"}, "{{.B}}"},
		{"no data", "plain", nil, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestRender(t *testing.T) {
	out, err := Render(VoiceFile, "rewrite-in-voice", map[string]string{
		"VoiceProfile": "- Uses contractions",
		"Studio":       "career",
		"Text":         "Hello there.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "- Uses contractions")
	assert.Contains(t, out, "for career content")
	assert.NotContains(t, out, "{{.Text}}")
	assert.Contains(t, out, "{{.SourceWords}}")
}
