// Package skills canonicalizes skill names so that "golang", "Go" and "GO"
// count as the same skill.
package skills

import (
	"strings"
)

// aliases maps common skill name variants to canonical names
var aliases = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"gcp":        "GCP",
	"aws":        "AWS",
	"sql":        "SQL",
}

// Normalize returns the canonical form of a skill name. Known aliases map to
// their canonical name; a single all-lowercase word is capitalized; anything
// else is returned trimmed.
func Normalize(name string) string {
	normalized := strings.Join(strings.Fields(name), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := aliases[lower]; ok {
		return canonical
	}

	// Mixed case and acronyms are kept as written.
	if normalized != lower {
		return normalized
	}
	if !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}
	return normalized
}

// NormalizeList normalizes every name and drops empties and duplicates,
// keeping the first occurrence.
func NormalizeList(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		s := Normalize(n)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
