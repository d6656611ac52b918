// Package ingestion turns job postings and candidate profiles, given as a
// URL or a local file, into markdown artifacts under the content root and
// the matching Job or Candidate rows, and announces them over the bus.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/discovery"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/fetch"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/skills"
)

var (
	// ErrNoSource is returned when neither a URL nor a file is given.
	ErrNoSource = errors.New("one of URL or file is required")
	// ErrTwoSources is returned when both a URL and a file are given.
	ErrTwoSources = errors.New("URL and file are mutually exclusive")
)

// Store is the subset of *db.DB ingestion writes to.
type Store interface {
	CreateJob(ctx context.Context, in *db.JobInput) (*db.Job, error)
	CreateCandidate(ctx context.Context, in *db.CandidateInput) (*db.Candidate, error)
}

// Options selects the source of one artifact. Title and Company name a job,
// Name names a candidate; each overrides what is read from the source.
type Options struct {
	URL      string
	File     string
	Title    string
	Company  string
	Name     string
	Announce bool
}

// Ingester writes artifacts under Root. LLM and Bus are optional: without
// LLM only the markdown structure is read, without Bus Announce is ignored.
type Ingester struct {
	Root    string
	Store   Store
	Bus     discovery.Announcer
	LLM     llm.Client
	Fetch   *fetch.Options
	Verbose bool
}

// JobResult is the outcome of IngestJobSpec.
type JobResult struct {
	Job       *db.Job
	Path      string // relative to Root
	MessageID string
	Metadata  *Metadata
}

// ProfileResult is the outcome of IngestProfile.
type ProfileResult struct {
	Candidate *db.Candidate
	Path      string // relative to Root
	MessageID string
	Metadata  *Metadata
}

// load returns the cleaned source text, a title hint and its metadata.
func (in *Ingester) load(ctx context.Context, opts Options) (string, string, *Metadata, error) {
	switch {
	case opts.URL != "" && opts.File != "":
		return "", "", nil, ErrTwoSources
	case opts.File != "":
		text, err := readFile(opts.File)
		if err != nil {
			return "", "", nil, err
		}
		return text, "", NewMetadata(text, ""), nil
	case opts.URL != "":
		fo := in.Fetch
		if fo == nil {
			fo = fetch.DefaultOptions()
		}
		page, err := fetch.Text(ctx, opts.URL, fo)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to fetch %s: %w", opts.URL, err)
		}
		text := CleanText(page.Text)
		meta := NewMetadata(text, opts.URL)
		meta.Platform = string(page.Platform)
		meta.Rendered = page.Rendered
		if in.Verbose {
			log.Printf("[ingest] %s: %d chars (platform %s)", opts.URL, len(text), page.Platform)
		}
		return text, page.Title, meta, nil
	default:
		return "", "", nil, ErrNoSource
	}
}

// IngestJobSpec reads a job posting and stores it. Requirements are the
// bullets under a Requirements or Qualifications heading; when there are
// none, or no title can be found, the LLM extracts them.
func (in *Ingester) IngestJobSpec(ctx context.Context, opts Options) (*JobResult, error) {
	text, pageTitle, meta, err := in.load(ctx, opts)
	if err != nil {
		return nil, err
	}

	title := firstNonEmpty(opts.Title, Title(text), pageTitle)
	company := firstNonEmpty(opts.Company, Field(text, "Company"))
	requirements := Section(text, "Requirements", "Qualifications", "What you")
	extracted := false

	if len(requirements) == 0 || title == "" {
		x, err := ExtractJob(ctx, in.LLM, text)
		switch {
		case errors.Is(err, ErrNoClient):
		case err != nil:
			log.Printf("[ingest] job extraction failed, keeping markdown fields: %v", err)
		default:
			title = firstNonEmpty(title, x.Title)
			company = firstNonEmpty(company, x.Company)
			if len(requirements) == 0 && len(x.Requirements) > 0 {
				requirements = x.Requirements
				extracted = true
			}
		}
	}
	if title == "" {
		return nil, fmt.Errorf("failed to ingest job spec: no title found, pass one explicitly")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if company != "" && Field(text, "Company") == "" {
		fmt.Fprintf(&b, "**Company:** %s\n", company)
	}
	if meta.SourceURL != "" {
		fmt.Fprintf(&b, "**Source:** %s\n", meta.SourceURL)
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(strings.TrimPrefix(text, "# "+Title(text))))
	if extracted {
		b.WriteString("\n\n## Requirements\n\n")
		for _, r := range requirements {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	rel, err := in.write(discovery.KindSpec, "job_"+Slug(title), meta.Hash, b.String())
	if err != nil {
		return nil, err
	}

	input := &db.JobInput{
		Title:        title,
		Company:      company,
		SpecFile:     rel,
		Requirements: requirements,
	}
	if meta.Platform == string(fetch.PlatformLinkedIn) {
		input.LinkedInURL = meta.SourceURL
	}
	job, err := in.Store.CreateJob(ctx, input)
	if err != nil {
		return nil, err
	}
	res := &JobResult{Job: job, Path: rel, Metadata: meta}

	if opts.Announce && in.Bus != nil {
		extra := meta.announcement()
		extra["job_id"] = job.ID
		extra["title"] = job.Title
		if job.Company != "" {
			extra["company"] = job.Company
		}
		id, err := discovery.Announce(ctx, in.Bus, discovery.KindSpec, rel, extra)
		if err != nil {
			return res, fmt.Errorf("failed to announce job spec: %w", err)
		}
		res.MessageID = id
	}
	return res, nil
}

// IngestProfile reads a candidate profile and stores it. Skills are the
// items under a Skills heading, comma separated or bulleted.
func (in *Ingester) IngestProfile(ctx context.Context, opts Options) (*ProfileResult, error) {
	text, pageTitle, meta, err := in.load(ctx, opts)
	if err != nil {
		return nil, err
	}

	input := &db.CandidateInput{
		Name:        firstNonEmpty(opts.Name, Title(text)),
		Email:       emailRe.FindString(text),
		LinkedInURL: linkedInRe.FindString(text),
		Skills:      SplitList(Section(text, "Skills", "Technical Skills", "Core Skills")),
		Preferences: db.Preferences{
			Location:   Field(text, "Location"),
			Industries: SplitList(Section(text, "Industries", "Interests")),
		},
	}
	if input.LinkedInURL == "" && fetch.DetectPlatform(opts.URL) == fetch.PlatformLinkedIn {
		input.LinkedInURL = opts.URL
	}

	if input.Name == "" || len(input.Skills) == 0 {
		x, err := ExtractProfile(ctx, in.LLM, text)
		switch {
		case errors.Is(err, ErrNoClient):
		case err != nil:
			log.Printf("[ingest] profile extraction failed, keeping markdown fields: %v", err)
		default:
			input.Name = firstNonEmpty(input.Name, x.Name)
			input.Email = firstNonEmpty(input.Email, x.Email)
			input.LinkedInURL = firstNonEmpty(input.LinkedInURL, x.LinkedInURL)
			input.Preferences.Location = firstNonEmpty(input.Preferences.Location, x.Location)
			if len(input.Skills) == 0 {
				input.Skills = x.Skills
			}
			if len(input.Preferences.Industries) == 0 {
				input.Preferences.Industries = x.Industries
			}
		}
	}
	input.Name = firstNonEmpty(input.Name, pageTitle)
	if input.Name == "" {
		return nil, fmt.Errorf("failed to ingest profile: no name found, pass one explicitly")
	}
	input.Skills = skills.NormalizeList(input.Skills)

	content := text
	if Title(text) == "" {
		content = fmt.Sprintf("# %s\n\n%s", input.Name, text)
	}
	rel, err := in.write(discovery.KindProfile, Slug(input.Name), meta.Hash, content)
	if err != nil {
		return nil, err
	}
	input.ProfileFile = rel

	c, err := in.Store.CreateCandidate(ctx, input)
	if err != nil {
		return nil, err
	}
	res := &ProfileResult{Candidate: c, Path: rel, Metadata: meta}

	if opts.Announce && in.Bus != nil {
		extra := meta.announcement()
		extra["candidate_id"] = c.ID
		extra["name"] = c.Name
		id, err := discovery.Announce(ctx, in.Bus, discovery.KindProfile, rel, extra)
		if err != nil {
			return res, fmt.Errorf("failed to announce profile: %w", err)
		}
		res.MessageID = id
	}
	return res, nil
}

// write stores content as <Root>/<kind dir>/<base>.md. When a different
// artifact already holds that name, a hash suffix keeps both.
func (in *Ingester) write(kind discovery.Kind, base, hash, content string) (string, error) {
	dir := filepath.Join(in.Root, discovery.Dir(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	content = strings.TrimSpace(content) + "\n"

	name := base + discovery.Suffix
	if existing, err := os.ReadFile(filepath.Join(dir, name)); err == nil && string(existing) != content {
		name = base + "_" + hash[:8] + discovery.Suffix
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return filepath.Join(discovery.Dir(kind), name), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
