package main

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/outreach"
)

var idRe = regexp.MustCompile(`\(id ([0-9a-f]{8})\)`)

func createdID(t *testing.T, out string) string {
	t.Helper()
	m := idRe.FindStringSubmatch(out)
	require.NotNil(t, m, out)
	return m[1]
}

func agreeableLLM() *llm.MockClient {
	return &llm.MockClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "MATCH_SCORE: 0.9\nGreat fit", nil
		},
	}
}

func TestInitDB_Reentrant(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "init-db")
	assert.Contains(t, out, "Database ready (sqlite, schema v")
	out = env.mustRun(t, "init-db")
	assert.Contains(t, out, "Database ready")
}

func TestJobsAndCandidates(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "jobs", "add", "--title", "Backend Engineer", "--company", "Acme", "-r", "Go,PostgreSQL")
	assert.Contains(t, out, "Added job Backend Engineer at Acme")

	out = env.mustRun(t, "candidates", "add", "--name", "Ada Lovelace", "--skills", "Go,Rust", "--location", "London")
	assert.Contains(t, out, "Added candidate Ada Lovelace")

	out = env.mustRun(t, "jobs", "list")
	assert.Contains(t, out, "Jobs (1):")
	assert.Contains(t, out, "(2 requirements)")

	out = env.mustRun(t, "candidates", "list")
	assert.Contains(t, out, "Candidates (1):")
	assert.Contains(t, out, "[Go, Rust]  @ London")

	// Slice flags from the previous invocation do not leak.
	env.mustRun(t, "candidates", "add", "--name", "Bob")
	out = env.mustRun(t, "candidates", "list")
	assert.NotContains(t, out, "Bob  [")

	_, err := env.run(t, "candidates", "add", "--name", "Eve", "--email", "not-an-email")
	var inErr *db.InputError
	assert.ErrorAs(t, err, &inErr)

	_, err = env.run(t, "jobs", "add")
	assert.ErrorContains(t, err, `required flag(s) "title" not set`)
}

func TestMessages_SendInboxRead(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "messages", "send", "--from", "jill", "--to", "Jack", "-t", "note", "-c", "Any Go people?", "-m", `{"urgent":true}`)
	assert.Contains(t, out, "Sent note from Jill to Jack")
	id := createdID(t, out)

	out = env.mustRun(t, "messages", "inbox", "Jack")
	assert.Contains(t, out, "JACK INBOX (1)")
	assert.Contains(t, out, "● ["+id+"] note from Jill")

	// Listing does not consume.
	out = env.mustRun(t, "messages", "inbox", "jack")
	assert.Contains(t, out, "JACK INBOX (1)")

	out = env.mustRun(t, "messages", "read", id)
	assert.Contains(t, out, "From: Jill")
	assert.Contains(t, out, "Any Go people?")
	assert.Contains(t, out, "  - urgent: true")

	out = env.mustRun(t, "messages", "inbox", "Jack")
	assert.Contains(t, out, "No messages")

	out = env.mustRun(t, "messages", "inbox", "Jack", "--all")
	assert.Contains(t, out, "○ ["+id+"]")

	_, err := env.run(t, "messages", "read", "deadbeef")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestMessages_InboxMarkRead(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "messages", "send", "--from", "Scout", "--to", "Jill", "-t", "note", "-c", "one")
	env.mustRun(t, "messages", "send", "--from", "Scout", "--to", "Jill", "-t", "note", "-c", "two")

	out := env.mustRun(t, "messages", "inbox", "Jill", "--mark-read")
	assert.Contains(t, out, "JILL INBOX (2)")
	out = env.mustRun(t, "messages", "inbox", "Jill")
	assert.Contains(t, out, "No messages")
}

func TestMessages_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "messages", "send", "--from", "Mallory", "--to", "Jack", "-t", "note", "-c", "x")
	assert.ErrorContains(t, err, `unknown agent "Mallory"`)

	_, err = env.run(t, "messages", "send", "--from", "Jack", "--to", "Jill", "-t", "note", "-c", "x", "-m", "[1,2]")
	assert.ErrorContains(t, err, "--metadata must be a JSON object")

	// Known message types have their metadata checked.
	_, err = env.run(t, "messages", "send", "--from", "Jill", "--to", "Jack", "-t", "job_spec", "-c", "x", "-m", `{"title":"no file"}`)
	assert.ErrorContains(t, err, "invalid job_spec metadata")

	_, err = env.run(t, "messages", "inbox", "Nobody")
	assert.Error(t, err)
}

func TestNegotiate_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	stubLLM(t, agreeableLLM())
	stubSearch(t, &staticSearcher{})

	jobOut := env.mustRun(t, "jobs", "add", "--title", "Backend Engineer", "--company", "Acme", "-r", "Go")
	jobID := createdID(t, jobOut)
	env.mustRun(t, "candidates", "add", "--name", "Ada", "--skills", "Go")

	reports := filepath.Join(env.root, "reports")
	out := env.mustRun(t, "negotiate", "--strategy", "shortlist", "--report-dir", reports)
	assert.Contains(t, out, "NEGOTIATION RUN")
	assert.Contains(t, out, "Ada  0.90  interview")
	assert.Contains(t, out, "Report: ")

	files, err := filepath.Glob(filepath.Join(reports, "job_discussions_*"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	out = env.mustRun(t, "matches", "--job", jobID)
	assert.Contains(t, out, "MATCHES: Backend Engineer at Acme")
	assert.Contains(t, out, "Ada  0.90  negotiation/pending")

	out = env.mustRun(t, "matches", "--best")
	assert.Contains(t, out, "Best matches (1):")

	out = env.mustRun(t, "messages", "inbox", "Jill", "-t", "job_shortlist")
	assert.Contains(t, out, "job_shortlist from Jack")
}

func TestNegotiate_NoCandidates(t *testing.T) {
	env := newTestEnv(t)
	stubLLM(t, agreeableLLM())
	stubSearch(t, &staticSearcher{})

	env.mustRun(t, "jobs", "add", "--title", "Designer")
	out := env.mustRun(t, "negotiate", "--report-dir", filepath.Join(env.root, "reports"))
	assert.Contains(t, out, "skipped: no suitable candidates")
	assert.Contains(t, out, "Matches:  0")
}

func TestNegotiate_StrategyErrors(t *testing.T) {
	env := newTestEnv(t)
	stubLLM(t, agreeableLLM())

	_, err := env.run(t, "negotiate", "--strategy", "roundtable")
	assert.ErrorContains(t, err, `unknown strategy "roundtable"`)

	path := filepath.Join(env.root, "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict:\n  interview_threshold: 0.9\n"), 0644))
	stubSearch(t, &staticSearcher{})
	out := env.mustRun(t, "negotiate", "--strategies", path, "--strategy", "strict", "--report-dir", filepath.Join(env.root, "reports"))
	assert.Contains(t, out, "Strategy: strict")
}

func TestNegotiate_RequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "negotiate")
	assert.ErrorContains(t, err, "Gemini API key not found")
}

func TestScout(t *testing.T) {
	env := newTestEnv(t)
	stubLLM(t, agreeableLLM())
	stubSearch(t, &staticSearcher{})

	env.mustRun(t, "jobs", "add", "--title", "SRE", "-r", "Kubernetes")
	env.mustRun(t, "candidates", "add", "--name", "Grace", "--skills", "Kubernetes")

	out := env.mustRun(t, "scout")
	assert.Contains(t, out, "SCOUT REPORT")
	assert.Contains(t, out, "Grace -> SRE (0.90)")

	out = env.mustRun(t, "messages", "inbox", "Jill")
	assert.Contains(t, out, "from Scout")
}

func TestIngestAndDiscover(t *testing.T) {
	env := newTestEnv(t)
	src := filepath.Join(t.TempDir(), "posting.md")
	require.NoError(t, os.WriteFile(src, []byte("# Platform Engineer\n\n**Company:** Initech\n\n## Requirements\n- Go\n- Terraform\n"), 0644))

	out := env.mustRun(t, "ingest", "job", "--text-file", src)
	assert.Contains(t, out, "Ingested job Platform Engineer at Initech")
	assert.Contains(t, out, "Spec: jobs/job_platform_engineer.md")
	assert.Contains(t, out, "Requirements: 2")
	assert.Contains(t, out, "Announced to Jack")

	out = env.mustRun(t, "discover", "specs")
	assert.Contains(t, out, "Job specs (1):")
	assert.Contains(t, out, "  - jobs/job_platform_engineer.md")
	assert.NotContains(t, out, "Candidate profiles")

	out = env.mustRun(t, "discover")
	assert.Contains(t, out, "Candidate profiles (0):")

	_, err := env.run(t, "discover", "everything")
	assert.Error(t, err)

	_, err = env.run(t, "ingest", "job")
	assert.Error(t, err)
	_, err = env.run(t, "ingest", "job", "--text-file", src, "--url", "https://example.com")
	assert.Error(t, err)
}

func TestIngestProfile_NoAnnounce(t *testing.T) {
	env := newTestEnv(t)
	src := filepath.Join(t.TempDir(), "ada.md")
	require.NoError(t, os.WriteFile(src, []byte("# Ada Lovelace\n\nada@example.com\n\n## Skills\n- Go, Rust\n"), 0644))

	out := env.mustRun(t, "ingest", "profile", "-t", src, "--announce=false")
	assert.Contains(t, out, "Ingested candidate Ada Lovelace")
	assert.NotContains(t, out, "Announced")

	out = env.mustRun(t, "messages", "inbox", "Jill")
	assert.Contains(t, out, "No messages")
}

type decideAll outreach.Decision

func (d decideAll) Review(context.Context, db.OutreachItem, int, int) (outreach.Decision, error) {
	return outreach.Decision(d), nil
}

func TestOutreach(t *testing.T) {
	env := newTestEnv(t)
	orig := newReviewer
	t.Cleanup(func() { newReviewer = orig })

	out := env.mustRun(t, "outreach", "list")
	assert.Contains(t, out, "No pending outreach messages.")

	out = env.mustRun(t, "outreach", "queue-candidate", "--name", "Ada", "--job-title", "SRE", "--company", "Acme",
		"--skills", "Go,Rust", "--linkedin", "https://linkedin.com/in/ada", "--reason", "strong Go")
	assert.Contains(t, out, "Queued outreach to candidate Ada")

	out = env.mustRun(t, "outreach", "queue-manager", "--name", "Sam", "--job-title", "SRE", "--candidate", "Ada")
	assert.Contains(t, out, "Queued introduction to Sam")

	out = env.mustRun(t, "outreach", "list")
	assert.Contains(t, out, "2 pending")
	assert.Contains(t, out, "[1/2] Ada")

	newReviewer = func(*cobra.Command) outreach.Reviewer { return decideAll(outreach.DecisionKeep) }
	out = env.mustRun(t, "outreach", "review")
	assert.Contains(t, out, "0 sent, 2 kept, 0 skipped")

	newReviewer = func(*cobra.Command) outreach.Reviewer { return decideAll(outreach.DecisionSent) }
	out = env.mustRun(t, "outreach", "review")
	assert.Contains(t, out, "2 sent")

	out = env.mustRun(t, "outreach", "list")
	assert.Contains(t, out, "No pending outreach messages.")

	_, err := env.run(t, "outreach", "queue-manager", "--name", "Sam", "--job-title", "SRE")
	assert.ErrorContains(t, err, "candidate")
}

func writeContent(t *testing.T, root, rel, text string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t)
	writeContent(t, env.root, "candidates/ada.md", "# Ada\n\n## Skills\n- Go\n")
	writeContent(t, env.root, "candidates/bob.md", "# Bob\n\n## Skills\n- Excel\n")
	writeContent(t, env.root, "jobs/job_sre.md", "# SRE\n\n## Requirements\n- Go\n")
	stubLLM(t, &llm.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			if strings.Contains(prompt, "# Ada") {
				return "MATCH_SCORE: 0.8\nStrong Go", nil
			}
			return "MATCH_SCORE: 0.3\nNo overlap", nil
		},
	})

	out := env.mustRun(t, "suggest")
	assert.Contains(t, out, "candidates/ada.md: 0.80, suggested to Jack")
	assert.Contains(t, out, "candidates/bob.md: 0.30, not suggesting")
	assert.Contains(t, out, "Sent 1 match suggestion(s) to Jack")

	out = env.mustRun(t, "messages", "inbox", "Jack", "--type", "match_suggestion")
	assert.Contains(t, out, "JACK INBOX (1)")
	assert.Contains(t, out, "match_suggestion from Jill")

	out = env.mustRun(t, "suggest", "jobs/job_sre.md", "--threshold", "0.2")
	assert.Contains(t, out, "Sent 2 match suggestion(s) to Jack")

	_, err := env.run(t, "suggest", "--threshold", "1.5")
	assert.Error(t, err)
	_, err = env.run(t, "suggest", "../outside.md")
	assert.Error(t, err)
}

func TestSuggest_RequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "suggest")
	assert.Error(t, err)
}

func TestIngestJob_Suggest(t *testing.T) {
	env := newTestEnv(t)
	writeContent(t, env.root, "candidates/ada.md", "# Ada\n\n## Skills\n- Go\n")
	stubLLM(t, agreeableLLM())
	src := filepath.Join(t.TempDir(), "posting.md")
	require.NoError(t, os.WriteFile(src, []byte("# SRE\n\n**Company:** Initech\n\n## Requirements\n- Go\n"), 0644))

	out := env.mustRun(t, "ingest", "job", "-t", src, "--suggest")
	assert.Contains(t, out, "Announced to Jack")
	assert.Contains(t, out, "Suggested 1 candidate(s) to Jack")
	jobID := createdID(t, out)

	out = env.mustRun(t, "messages", "log")
	assert.Contains(t, out, "Jill → Jack: Job Spec")
	assert.Contains(t, out, "Jill → Jack: Match Suggestion")
	assert.Contains(t, out, "- candidate_file: candidates/ada.md")
	assert.Contains(t, out, "- job_id: "+jobID)
	assert.Less(t, strings.Index(out, "Job Spec"), strings.Index(out, "Match Suggestion"))

	_, err := env.run(t, "ingest", "job", "-t", src, "--suggest", "--announce=false")
	assert.Error(t, err)
}

func TestMessagesLog_Empty(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "messages", "log")
	assert.Contains(t, out, "# Agent Conversation Log")
	assert.Contains(t, out, "No messages yet.")
}
