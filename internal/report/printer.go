package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/negotiation"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/scout"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed summaries for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintRun summarizes a negotiation run: one block per job with its
// decisions, top candidates first.
func (p *Printer) PrintRun(r *negotiation.RunReport) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", r.Strategy))
	sb.WriteString(fmt.Sprintf("Jobs:     %d\n", len(r.Jobs)))
	sb.WriteString(fmt.Sprintf("Matches:  %d\n", r.Matches()))
	for _, n := range r.Notes {
		sb.WriteString(fmt.Sprintf("Note:     %s\n", n))
	}

	for _, job := range r.Jobs {
		sb.WriteString("\n")
		sb.WriteString(jobHeading(job.JobTitle, job.Company))
		sb.WriteString("\n")
		if job.Skipped {
			sb.WriteString(fmt.Sprintf("  skipped: %s\n", job.Reason))
		}
		count := min(len(job.Candidates), maxItemsToShow)
		for i := 0; i < count; i++ {
			d := job.Candidates[i]
			sb.WriteString(fmt.Sprintf("  %d. %s  %.2f  %s\n", i+1, nameOrID(d.CandidateName, d.CandidateID), d.Average, d.Decision))
		}
		if len(job.Candidates) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.Candidates)-maxItemsToShow))
		}
		// Skipped jobs can still carry externally sourced profiles.
		if len(job.External) > 0 {
			sb.WriteString(fmt.Sprintf("  external profiles: %d\n", len(job.External)))
		}
	}

	p.printBox("NEGOTIATION RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScout summarizes a scout run.
func (p *Printer) PrintScout(r *scout.Report) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Jobs scanned:        %d\n", len(r.Jobs)))
	sb.WriteString(fmt.Sprintf("Candidates scanned:  %d\n", len(r.Candidates)))
	sb.WriteString(fmt.Sprintf("Internal matches:    %d\n", r.InternalMatches()))
	sb.WriteString(fmt.Sprintf("External profiles:   %d\n", r.ExternalProfiles()))
	sb.WriteString(fmt.Sprintf("External jobs:       %d\n", r.ExternalJobs()))
	sb.WriteString(fmt.Sprintf("Messages sent:       %d", r.Messages()))

	for _, j := range r.Jobs {
		for _, m := range j.InternalMatch {
			sb.WriteString(fmt.Sprintf("\n  • %s -> %s (%.2f)", nameOrID(m.CandidateName, m.CandidateID), j.JobTitle, m.Score))
		}
	}

	p.printBox("SCOUT REPORT", sb.String())
}

// PrintInbox lists an agent's messages, newest first as received.
func (p *Printer) PrintInbox(agent string, msgs []db.AgentMessage) {
	if len(msgs) == 0 {
		p.printBox(strings.ToUpper(agent)+" INBOX", "No messages")
		return
	}

	var sb strings.Builder
	for i, m := range msgs {
		marker := "●"
		if m.Read {
			marker = "○"
		}
		sb.WriteString(fmt.Sprintf("%s [%s] %s from %s\n", marker, m.ID, m.Type, m.FromAgent))
		sb.WriteString(fmt.Sprintf("  %s\n", m.CreatedAt.Format("2006-01-02 15:04")))
		sb.WriteString(fmt.Sprintf("  %s", m.Content))
		if i < len(msgs)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox(fmt.Sprintf("%s INBOX (%d)", strings.ToUpper(agent), len(msgs)), sb.String())
}

// PrintJobMatches lists the matches recorded for one job.
func (p *Printer) PrintJobMatches(title string, matches []db.MatchForJob) {
	var sb strings.Builder
	if len(matches) == 0 {
		sb.WriteString("No matches")
	}
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("%s  %.2f  %s/%s", m.CandidateName, m.Score, m.Source, m.Status))
		if i < len(matches)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("MATCHES: "+title, sb.String())
}

var typeTitle = cases.Title(language.English)

// PrintConversation writes every message as a markdown log, in the order
// given. Callers pass messages oldest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintConversation(msgs []db.AgentMessage) {
	fmt.Fprintln(p.out, "# Agent Conversation Log")
	fmt.Fprintln(p.out)
	if len(msgs) == 0 {
		fmt.Fprintln(p.out, "No messages yet.")
		return
	}
	for _, m := range msgs {
		title := typeTitle.String(strings.ReplaceAll(m.Type, "_", " "))
		fmt.Fprintf(p.out, "## [%s] %s → %s: %s\n\n", m.CreatedAt.Format("2006-01-02 15:04:05"), m.FromAgent, m.ToAgent, title)
		fmt.Fprintf(p.out, "%s\n\n", m.Content)
		if len(m.Metadata) > 0 {
			keys := make([]string, 0, len(m.Metadata))
			for k := range m.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(p.out, "**Attachments:**")
			for _, k := range keys {
				fmt.Fprintf(p.out, "- %s: %v\n", k, m.Metadata[k])
			}
			fmt.Fprintln(p.out)
		}
		fmt.Fprintln(p.out, "---")
		fmt.Fprintln(p.out)
	}
}
