package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"headings kept", "  # Title\n## Subtitle\nContent here", "# Title\n## Subtitle\nContent here"},
		{"bullets kept", "- Item 1\n- Item 2\n* Item 3", "- Item 1\n- Item 2\n* Item 3"},
		{"spaces collapsed", "Line    with    spaces", "Line with spaces"},
		{"blank runs capped", "Line 1\n\n\n\n\nLine 2", "Line 1\n\nLine 2"},
		{"line endings", "Line 1\r\nLine 2\rLine 3", "Line 1\nLine 2\nLine 3"},
		{"unicode", "Test with émojis 🚀", "Test with émojis 🚀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestSection(t *testing.T) {
	text := `# Backend Engineer

About the team.

## Requirements
- 5+ years of Go
* PostgreSQL
• Kubernetes

## Benefits
- Free lunch`

	assert.Equal(t, []string{"5+ years of Go", "PostgreSQL", "Kubernetes"}, Section(text, "requirements"))
	assert.Equal(t, []string{"Free lunch"}, Section(text, "Benefits"))
	assert.Empty(t, Section(text, "Skills"))
}

func TestSection_ColonHeadingAndPlainLines(t *testing.T) {
	text := "Name here\nSkills:\nGo, Rust; SQL\n\nLocation: Berlin"
	assert.Equal(t, []string{"Go, Rust; SQL", "Location: Berlin"}, Section(text, "Skills"))
	assert.Equal(t, []string{"Go", "Rust", "SQL", "Location: Berlin"}, SplitList(Section(text, "Skills")))
}

func TestTitleAndField(t *testing.T) {
	text := "intro\n# Ada Lovelace\n**Location:** London\n- Company: Analytical Engines"
	assert.Equal(t, "Ada Lovelace", Title(text))
	assert.Equal(t, "London", Field(text, "Location"))
	assert.Equal(t, "Analytical Engines", Field(text, "company"))
	assert.Empty(t, Field(text, "Email"))
	assert.Empty(t, Title("no headings"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "senior_go_engineer_payments", Slug("Senior Go Engineer (Payments)"))
	assert.Equal(t, "untitled", Slug("!!!"))
	assert.LessOrEqual(t, len(Slug("a very long title that keeps going and going well beyond sixty characters")), 60)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.md")
	require.NoError(t, os.WriteFile(path, []byte("# Role\r\n\r\n\r\n\r\nText   here"), 0644))

	text, err := readFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Role\n\nText here", text)

	_, err = readFile(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestNewMetadata(t *testing.T) {
	a := NewMetadata("content", "https://example.com/job")
	b := NewMetadata("content", "")
	c := NewMetadata("other", "")

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.Len(t, a.Hash, 64)
	assert.NotEmpty(t, a.Timestamp)

	assert.Equal(t, map[string]any{"hash": a.Hash, "source_url": "https://example.com/job"}, a.announcement())
	assert.NotContains(t, b.announcement(), "source_url")
}
