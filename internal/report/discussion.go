// Package report writes negotiation discussion reports to disk and prints
// run, scout and inbox summaries for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/negotiation"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/schemas"
)

// DiscussionSchema is the embedded schema a discussion report must satisfy.
const DiscussionSchema = "discussion_report"

// filePrefix and stampLayout name the report files:
// job_discussions_20250102_150405.{json,md}
const (
	filePrefix  = "job_discussions_"
	stampLayout = "20060102_150405"
)

// WriteDiscussion validates r and writes it to dir as JSON and Markdown.
// It returns both paths.
func WriteDiscussion(dir string, r *negotiation.RunReport) (string, string, error) {
	if r == nil {
		return "", "", fmt.Errorf("failed to write discussion report: nil report")
	}
	if err := schemas.Validate(DiscussionSchema, r); err != nil {
		return "", "", fmt.Errorf("discussion report is invalid: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create report directory: %w", err)
	}

	base := filepath.Join(dir, filePrefix+r.StartedAt.Format(stampLayout))
	jsonPath, mdPath := base+".json", base+".md"

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal discussion report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	if err := os.WriteFile(mdPath, []byte(Markdown(r)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	return jsonPath, mdPath, nil
}

// Markdown renders r with a ranking table per job followed by every
// rationale and the transcript.
func Markdown(r *negotiation.RunReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Job Discussions\n\n")
	fmt.Fprintf(&sb, "- Strategy: %s\n", r.Strategy)
	fmt.Fprintf(&sb, "- Started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "- Finished: %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&sb, "- Jobs: %d\n- Matches created: %d\n", len(r.Jobs), r.Matches())
	for _, n := range r.Notes {
		fmt.Fprintf(&sb, "- Note: %s\n", n)
	}

	for _, job := range r.Jobs {
		sb.WriteString("\n---\n\n")
		writeJob(&sb, &job)
	}
	return sb.String()
}

func writeJob(sb *strings.Builder, job *negotiation.JobOutcome) {
	fmt.Fprintf(sb, "## %s\n\n", jobHeading(job.JobTitle, job.Company))
	fmt.Fprintf(sb, "Job ID: `%s`\n\n", job.JobID)

	if job.Skipped {
		fmt.Fprintf(sb, "**Skipped:** %s\n", job.Reason)
	}
	if job.Opening != "" {
		fmt.Fprintf(sb, "**Opening:** %s\n\n", job.Opening)
	}

	if len(job.Screened) > 0 {
		sb.WriteString("### Screening\n\n| Candidate | Score | Parsed |\n|---|---|---|\n")
		for _, s := range job.Screened {
			fmt.Fprintf(sb, "| %s | %.2f | %t |\n", cell(nameOrID(s.CandidateName, s.CandidateID)), s.Score, s.Parsed)
		}
		sb.WriteString("\n")
	}

	if len(job.Candidates) > 0 {
		sb.WriteString("### Ranking\n\n| # | Candidate | Screening | Advocate | Reviewer | Average | Decision |\n|---|---|---|---|---|---|---|\n")
		for i, d := range job.Candidates {
			screening := "-"
			if d.ScreeningScore != nil {
				screening = fmt.Sprintf("%.2f", *d.ScreeningScore)
			}
			fmt.Fprintf(sb, "| %d | %s | %s | %.2f | %.2f | %.4f | %s |\n",
				i+1, cell(nameOrID(d.CandidateName, d.CandidateID)), screening,
				d.AdvocateScore, d.ReviewerScore, d.Average, d.Decision)
		}
		sb.WriteString("\n### Rationale\n")
		for _, d := range job.Candidates {
			fmt.Fprintf(sb, "\n#### %s (%s)\n\n", nameOrID(d.CandidateName, d.CandidateID), d.Decision)
			if d.MatchID != "" {
				fmt.Fprintf(sb, "Match: `%s`\n\n", d.MatchID)
			}
			fmt.Fprintf(sb, "**Advocate:** %s\n\n", orDash(d.AdvocateRationale))
			fmt.Fprintf(sb, "**Reviewer:** %s\n", orDash(d.ReviewerRationale))
		}
		sb.WriteString("\n")
	}

	if len(job.External) > 0 {
		sb.WriteString("### External candidates\n\n")
		for _, p := range job.External {
			fmt.Fprintf(sb, "- [%s](%s) %s\n", p.Name, p.URL, p.Headline)
		}
		sb.WriteString("\n")
	}

	if len(job.Transcript) > 0 {
		sb.WriteString("### Transcript\n\n")
		for _, line := range job.Transcript {
			fmt.Fprintf(sb, "**%s:** %s\n\n", line.Speaker, line.Text)
		}
	}
}

func jobHeading(title, company string) string {
	if company == "" {
		return title
	}
	return title + " at " + company
}

func nameOrID(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// cell keeps a value from breaking a markdown table row.
func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
