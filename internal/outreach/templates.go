package outreach

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.md
var templateFS embed.FS

// Template names
const (
	TemplateCandidate     = "candidate_outreach"
	TemplateHiringManager = "hiring_manager_outreach"
)

// LoadTemplate returns the raw text of an embedded template.
func LoadTemplate(name string) (string, error) {
	data, err := templateFS.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("template %s not found: %w", name, err)
	}
	return string(data), nil
}

// Render replaces {{key}} placeholders with vars. Empty values render as "N/A".
func Render(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		if strings.TrimSpace(value) == "" {
			value = "N/A"
		}
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

// CandidateMessage is the data for a candidate outreach message.
type CandidateMessage struct {
	CandidateName string
	Skills        []string
	JobTitle      string
	Company       string
	MatchReason   string
}

// HiringManagerMessage is the data for a hiring manager introduction.
type HiringManagerMessage struct {
	ManagerName         string
	JobTitle            string
	Company             string
	CandidateName       string
	CandidateExperience string
	CandidateSkills     []string
	MatchReason         string
}

func joinFirst(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

// RenderCandidate renders the candidate template. Only the first three skills
// are mentioned.
func RenderCandidate(m CandidateMessage) (string, error) {
	tmpl, err := LoadTemplate(TemplateCandidate)
	if err != nil {
		return "", err
	}
	return Render(tmpl, map[string]string{
		"candidate_name":   m.CandidateName,
		"candidate_skills": joinFirst(m.Skills, 3),
		"job_title":        m.JobTitle,
		"company_name":     m.Company,
		"match_reason":     m.MatchReason,
	}), nil
}

// RenderHiringManager renders the hiring manager template with up to five skills.
func RenderHiringManager(m HiringManagerMessage) (string, error) {
	tmpl, err := LoadTemplate(TemplateHiringManager)
	if err != nil {
		return "", err
	}
	return Render(tmpl, map[string]string{
		"hiring_manager_name":  m.ManagerName,
		"job_title":            m.JobTitle,
		"company_name":         m.Company,
		"candidate_name":       m.CandidateName,
		"candidate_experience": m.CandidateExperience,
		"candidate_skills":     joinFirst(m.CandidateSkills, 5),
		"match_reason":         m.MatchReason,
	}), nil
}
