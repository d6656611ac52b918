package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"score\": 0.8}\n```",
			expected: `{"score": 0.8}`,
		},
		{
			name:     "plain JSON",
			input:    `{"score": 0.8}`,
			expected: `{"score": 0.8}`,
		},
		{
			name:     "preamble before object",
			input:    "Here is my assessment:\n{\"score\": 0.6, \"reason\": \"ok\"}",
			expected: `{"score": 0.6, "reason": "ok"}`,
		},
		{
			name:     "trailer after array",
			input:    "[\"go\", \"sql\"]\nHope this helps!",
			expected: `["go", "sql"]`,
		},
		{
			name:     "preamble before array",
			input:    "Skills: [\"go\"] done",
			expected: `["go"]`,
		},
		{
			name:     "no JSON at all",
			input:    "  no structure here  ",
			expected: "no structure here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}
