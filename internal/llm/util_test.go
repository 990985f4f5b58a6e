package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "preamble before JSON object",
			input:    "Here is the rewrite:\n{\"rewritten\": \"Hi there.\"}",
			expected: `{"rewritten": "Hi there."}`,
		},
		{
			name:     "trailing chatter",
			input:    "{\"rewritten\": \"ok\"}\nLet me know if you need changes.",
			expected: `{"rewritten": "ok"}`,
		},
		{
			name:     "array",
			input:    "```json\n[1, 2]\n```",
			expected: `[1, 2]`,
		},
		{
			name:     "no JSON at all",
			input:    "  sorry, cannot help  ",
			expected: "sorry, cannot help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
