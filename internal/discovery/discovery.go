// Package discovery enumerates candidate profiles and job specs that are
// waiting to be processed. An artifact can show up as a file in the content
// directory, as an attachment on a bus announcement, or both; the index
// reconciles the two into one sorted, duplicate-free list.
package discovery

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
)

// Kind selects which artifacts to list.
type Kind string

const (
	// KindProfile is a candidate profile under <root>/candidates
	KindProfile Kind = "profile"
	// KindSpec is a job spec under <root>/jobs
	KindSpec Kind = "spec"
)

// Suffix is the filename suffix of artifacts.
const Suffix = ".md"

type source struct {
	dir         string
	messageType string
	metadataKey string
}

var sources = map[Kind]source{
	KindProfile: {dir: "candidates", messageType: bus.TypeCandidateProfile, metadataKey: "candidate_file"},
	KindSpec:    {dir: "jobs", messageType: bus.TypeJobSpec, metadataKey: "job_file"},
}

// Messages is the part of the bus the index reads.
type Messages interface {
	OfType(ctx context.Context, msgType string) ([]db.AgentMessage, error)
}

// Index lists artifacts under Root and those announced over Messages.
type Index struct {
	Root     string
	Messages Messages
}

// New creates an Index
func New(root string, messages Messages) *Index {
	return &Index{Root: root, Messages: messages}
}

// ListProfiles returns root-relative candidate profile paths.
func (ix *Index) ListProfiles(ctx context.Context) ([]string, error) {
	return ix.List(ctx, KindProfile)
}

// ListSpecs returns root-relative job spec paths.
func (ix *Index) ListSpecs(ctx context.Context) ([]string, error) {
	return ix.List(ctx, KindSpec)
}

// List returns the deduplicated, lexicographically sorted artifact paths of
// kind, relative to Root. Announced paths that no longer exist are dropped.
func (ix *Index) List(ctx context.Context, kind Kind) ([]string, error) {
	src, ok := sources[kind]
	if !ok {
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}

	seen := make(map[string]struct{})

	dir := filepath.Join(ix.Root, src.dir)
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Suffix) {
			continue
		}
		seen[filepath.Join(src.dir, e.Name())] = struct{}{}
	}

	if ix.Messages != nil {
		msgs, err := ix.Messages.OfType(ctx, src.messageType)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			raw, _ := m.Metadata[src.metadataKey].(string)
			if raw == "" {
				continue
			}
			rel, ok := ix.Rel(raw)
			if !ok {
				log.Printf("[discovery] ignoring %s outside %s: %s", src.metadataKey, ix.Root, raw)
				continue
			}
			if _, err := os.Stat(filepath.Join(ix.Root, rel)); err != nil {
				continue
			}
			seen[rel] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Rel maps a path to its cleaned root-relative identity, the form List
// returns. Relative paths are taken relative to Root. Paths outside Root
// report false.
func (ix *Index) Rel(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	if !filepath.IsAbs(p) {
		rel := filepath.Clean(p)
		return rel, !escapes(rel)
	}
	root, err := filepath.Abs(ix.Root)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, filepath.Clean(p))
	if err != nil || escapes(rel) {
		return "", false
	}
	return rel, true
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Dir returns the root-relative directory holding artifacts of kind.
func Dir(kind Kind) string {
	return sources[kind].dir
}

// Path returns the filesystem path of a root-relative artifact.
func (ix *Index) Path(rel string) string {
	return filepath.Join(ix.Root, rel)
}

// Read returns the contents of a root-relative artifact.
func (ix *Index) Read(rel string) (string, error) {
	rel, ok := ix.Rel(rel)
	if !ok {
		return "", fmt.Errorf("artifact outside %s", ix.Root)
	}
	data, err := os.ReadFile(ix.Path(rel))
	if err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	return string(data), nil
}

// Announcer sends bus messages.
type Announcer interface {
	Send(ctx context.Context, from, to, msgType, content string, metadata map[string]any) (string, error)
}

// Announce tells the other side that a new artifact exists. Profiles go from
// Jack to Jill, specs from Jill to Jack.
func Announce(ctx context.Context, a Announcer, kind Kind, rel string, extra map[string]any) (string, error) {
	src, ok := sources[kind]
	if !ok {
		return "", fmt.Errorf("unknown artifact kind %q", kind)
	}
	meta := map[string]any{src.metadataKey: filepath.ToSlash(filepath.Clean(rel))}
	for k, v := range extra {
		meta[k] = v
	}
	from, to := bus.AgentJack, bus.AgentJill
	content := "New candidate profile: " + rel
	if kind == KindSpec {
		from, to = bus.AgentJill, bus.AgentJack
		content = "New job spec: " + rel
	}
	return a.Send(ctx, from, to, src.messageType, content, meta)
}
