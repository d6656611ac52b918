package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	blankRun   = regexp.MustCompile(`\n\n\n+`)
	slugStrip  = regexp.MustCompile(`[^a-z0-9]+`)
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	linkedInRe = regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_\-%]+/?`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankRun.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}

	content := spaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
	return strings.Repeat(" ", indent) + content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

func bulletText(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(trimmed, p) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, p))
		}
	}
	return strings.TrimSpace(trimmed)
}

// headingText returns the text of a markdown heading, or of a short line
// ending in a colon, and whether line is one.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		return strings.TrimSpace(strings.TrimLeft(trimmed, "#")), true
	}
	if strings.HasSuffix(trimmed, ":") && !isBulletLine(trimmed) && len(strings.Fields(trimmed)) <= 4 {
		return strings.TrimSuffix(trimmed, ":"), true
	}
	return "", false
}

// Section returns the bullet items under the first heading whose text
// starts with one of names, case-insensitively. A section without bullets
// yields its non-empty lines instead.
func Section(text string, names ...string) []string {
	var bullets, plain []string
	inside := false
	for _, line := range strings.Split(text, "\n") {
		if h, ok := headingText(line); ok {
			if inside {
				break
			}
			lower := strings.ToLower(h)
			for _, n := range names {
				if strings.HasPrefix(lower, strings.ToLower(n)) {
					inside = true
					break
				}
			}
			continue
		}
		if !inside || strings.TrimSpace(line) == "" {
			continue
		}
		if isBulletLine(line) {
			if item := bulletText(line); item != "" {
				bullets = append(bullets, item)
			}
			continue
		}
		plain = append(plain, strings.TrimSpace(line))
	}
	if len(bullets) > 0 {
		return bullets
	}
	return plain
}

// Title returns the text of the first top-level markdown heading.
func Title(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Field returns the value of the first "Label: value" line, with optional
// bold markers around the label.
func Field(text, label string) string {
	want := strings.ToLower(label) + ":"
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "-*"))
		if strings.HasPrefix(strings.ToLower(trimmed), want) {
			return strings.TrimSpace(trimmed[len(want):])
		}
	}
	return ""
}

// SplitList splits comma or semicolon separated items and drops empties.
func SplitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ';' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Slug lowercases s and joins its alphanumeric runs with underscores.
func Slug(s string) string {
	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "_")
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// readFile reads and cleans a local text or markdown file.
func readFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanText(string(content)), nil
}
