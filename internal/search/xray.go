package search

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// DefaultLimit is how many results one X-Ray search asks for.
const DefaultLimit = 10

// Profile is a candidate found by X-Ray search.
type Profile struct {
	Name     string `json:"name"`
	Headline string `json:"headline,omitempty"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet,omitempty"`
}

// Posting is a job found by X-Ray search.
type Posting struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

func orQuoted(terms []string, max int) string {
	var quoted []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", t))
		if len(quoted) == max {
			break
		}
	}
	return strings.Join(quoted, " OR ")
}

// CandidateQuery builds a profile X-Ray query from a job title, the first
// three skills and an optional location.
func CandidateQuery(title string, skills []string, location string) string {
	q := "site:linkedin.com/in/"
	if title = strings.TrimSpace(title); title != "" {
		q += fmt.Sprintf(" %q", title)
	}
	if s := orQuoted(skills, 3); s != "" {
		q += " (" + s + ")"
	}
	if location = strings.TrimSpace(location); location != "" {
		q += fmt.Sprintf(" %q", location)
	}
	return q
}

// JobQuery builds a posting X-Ray query from the first three skills, the
// first two industries and an optional location. Candidates without skills
// search for "software".
func JobQuery(skills, industries []string, location string) string {
	s := orQuoted(skills, 3)
	if s == "" {
		s = `"software"`
	}
	q := "site:linkedin.com/jobs/ (" + s + ")"
	if ind := orQuoted(industries, 2); ind != "" {
		q += " (" + ind + ")"
	}
	if location = strings.TrimSpace(location); location != "" {
		q += fmt.Sprintf(" %q", location)
	}
	return q
}

// ParseProfile reads a "Name - Headline | LinkedIn" result. Results that do
// not point at a linkedin.com/in/ profile are rejected.
func ParseProfile(r Result) (Profile, bool) {
	if !strings.Contains(r.URL, "linkedin.com/in/") {
		return Profile{}, false
	}
	p := Profile{Name: "Unknown", URL: r.URL, Snippet: r.Snippet}
	title := strings.TrimSpace(r.Title)
	if name, rest, ok := strings.Cut(title, " - "); ok {
		p.Name = strings.TrimSpace(name)
		headline, _, _ := strings.Cut(rest, "|")
		p.Headline = strings.TrimSpace(headline)
	} else if name, _, ok := strings.Cut(title, "|"); ok {
		p.Name = strings.TrimSpace(name)
	} else if title != "" {
		p.Name = title
	}
	if p.Name == "" {
		p.Name = "Unknown"
	}
	return p, true
}

// ParsePosting reads a "Title at Company | LinkedIn" result. Results that do
// not point at linkedin.com/jobs/ are rejected.
func ParsePosting(r Result) (Posting, bool) {
	if !strings.Contains(r.URL, "linkedin.com/jobs/") {
		return Posting{}, false
	}
	title, _, _ := strings.Cut(r.Title, "|")
	title = strings.TrimSpace(title)
	p := Posting{Title: title, URL: r.URL, Snippet: r.Snippet}
	if idx := strings.LastIndex(title, " at "); idx >= 0 {
		p.Title = strings.TrimSpace(title[:idx])
		p.Company = strings.TrimSpace(title[idx+len(" at "):])
	}
	return p, true
}

// FindCandidates runs a profile search. Failures are logged and reported as
// an empty list.
func FindCandidates(ctx context.Context, s Searcher, query string, limit int) []Profile {
	results := run(ctx, s, query, limit)
	out := make([]Profile, 0, len(results))
	for _, r := range results {
		if p, ok := ParseProfile(r); ok {
			out = append(out, p)
		}
	}
	return out
}

// FindJobs runs a posting search. Failures are logged and reported as an
// empty list.
func FindJobs(ctx context.Context, s Searcher, query string, limit int) []Posting {
	results := run(ctx, s, query, limit)
	out := make([]Posting, 0, len(results))
	for _, r := range results {
		if p, ok := ParsePosting(r); ok {
			out = append(out, p)
		}
	}
	return out
}

func run(ctx context.Context, s Searcher, query string, limit int) []Result {
	if s == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	results, err := s.Search(ctx, query, limit)
	if err != nil {
		log.Printf("[search] %q failed: %v", query, err)
		return nil
	}
	return results
}
