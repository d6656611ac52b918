package negotiation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/discovery"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
)

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	ctx := context.Background()
	store, err := db.Open(ctx, db.Options{Driver: db.DriverSQLite, DSN: filepath.Join(t.TempDir(), "negotiation.db")})
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// keyedPrompts renders every prompt as "key|candidate" so the mock model can
// answer per step.
func keyedPrompts(key string, data map[string]string) (string, error) {
	return key + "|" + data["CandidateName"] + "|" + data["AdvocateRationale"], nil
}

// scriptedClient answers by "key|candidate" prefix.
func scriptedClient(answers map[string]string) *llm.MockClient {
	return &llm.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			parts := strings.SplitN(prompt, "|", 3)
			if a, ok := answers[parts[0]+"|"+parts[1]]; ok {
				return a, nil
			}
			if a, ok := answers[parts[0]]; ok {
				return a, nil
			}
			return "", errors.New("no scripted answer for " + parts[0] + "|" + parts[1])
		},
	}
}

func newOrchestrator(t *testing.T, store *db.DB, client llm.Client, s Strategy) *Orchestrator {
	t.Helper()
	return &Orchestrator{
		Store:    store,
		Bus:      bus.New(store),
		Oracle:   oracle.New(client),
		Prompts:  keyedPrompts,
		Strategy: s,
		Clock:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Out:      &bytes.Buffer{},
	}
}

func addCandidate(t *testing.T, store *db.DB, name string, skills ...string) *db.Candidate {
	t.Helper()
	c, err := store.CreateCandidate(context.Background(), &db.CandidateInput{Name: name, Skills: skills})
	require.NoError(t, err)
	return c
}

func addJob(t *testing.T, store *db.DB, title string) *db.Job {
	t.Helper()
	j, err := store.CreateJob(context.Background(), &db.JobInput{Title: title, Company: "Acme", Requirements: []string{"Go", "SQL"}})
	require.NoError(t, err)
	return j
}

func TestShortlist_ThresholdAndOrder(t *testing.T) {
	screened := []Screened{
		{CandidateID: "a", Score: 0.9},
		{CandidateID: "b", Score: 0.4},
		{CandidateID: "c", Score: 0.6},
	}
	got := Shortlist(screened, 0.5, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].CandidateID)
	assert.Equal(t, "c", got[1].CandidateID)
	// input untouched
	assert.Equal(t, "b", screened[1].CandidateID)
}

func TestShortlist_CapAndTies(t *testing.T) {
	screened := []Screened{
		{CandidateID: "a", Score: 0.6},
		{CandidateID: "b", Score: 0.8},
		{CandidateID: "c", Score: 0.6},
		{CandidateID: "d", Score: 0.5},
	}
	got := Shortlist(screened, 0.5, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].CandidateID, got[1].CandidateID, got[2].CandidateID})

	assert.Empty(t, Shortlist(nil, 0.5, 5))
	assert.Empty(t, Shortlist([]Screened{{CandidateID: "x", Score: 0.49}}, 0.5, 5))
}

func TestDecide_CrossReviewBands(t *testing.T) {
	s := ShortlistStrategy()
	tests := []struct {
		name     string
		adv, rev float64
		wantAvg  float64
		wantBand Decision
	}{
		{"interview boundary", 0.8, 0.6, 0.7, DecisionInterview},
		{"backup boundary", 0.5, 0.5, 0.5, DecisionBackup},
		{"backup", 0.7, 0.4, 0.55, DecisionBackup},
		{"pass", 0.5, 0.4, 0.45, DecisionPass},
		{"top", 1, 1, 1, DecisionInterview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := Average(tt.adv, tt.rev)
			assert.Equal(t, tt.wantAvg, avg)
			assert.Equal(t, tt.wantBand, Decide(avg, s))
		})
	}
}

func TestDecide_PitchIsExclusive(t *testing.T) {
	s := BoardroomStrategy()
	assert.Equal(t, DecisionReject, Decide(0.8, s))
	assert.Equal(t, DecisionAdmit, Decide(0.85, s))

	s.AdmitExclusive = false
	assert.Equal(t, DecisionAdmit, Decide(0.8, s))
}

func TestRun_ZeroCandidates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addJob(t, store, "Backend Engineer")

	o := newOrchestrator(t, store, scriptedClient(nil), ShortlistStrategy())
	report, err := o.Run(ctx)
	require.NoError(t, err)

	require.Len(t, report.Jobs, 1)
	assert.True(t, report.Jobs[0].Skipped)
	assert.Equal(t, ReasonNoCandidates, report.Jobs[0].Reason)
	assert.Empty(t, report.Jobs[0].MessageID)
	assert.Contains(t, report.Notes, "no candidates found")

	matches, err := store.ListMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, matches)

	msgs, err := store.ListMessages(ctx, db.MessageFilter{Type: bus.TypeJobShortlist})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRun_CrossReview(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	job := addJob(t, store, "Backend Engineer")
	ada := addCandidate(t, store, "Ada", "Go")
	bob := addCandidate(t, store, "Bob")
	cy := addCandidate(t, store, "Cy", "SQL")

	client := scriptedClient(map[string]string{
		"screen|Ada":   "MATCH_SCORE: 0.9\nstrong",
		"screen|Bob":   "MATCH_SCORE: 0.4\nweak",
		"screen|Cy":    "MATCH_SCORE: 0.6\nok",
		"advocate|Ada": "MATCH_SCORE: 0.8\nAda pitch",
		"advocate|Cy":  "MATCH_SCORE: 0.5\nCy pitch",
		"reviewer|Ada": "MATCH_SCORE: 0.6\nAda review",
		"reviewer|Cy":  "MATCH_SCORE: 0.5\nCy review",
	})
	o := newOrchestrator(t, store, client, ShortlistStrategy())

	report, err := o.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Jobs, 1)
	out := report.Jobs[0]

	assert.False(t, out.Skipped)
	require.Len(t, out.Screened, 3)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, ada.ID, out.Candidates[0].CandidateID)
	assert.Equal(t, DecisionInterview, out.Candidates[0].Decision)
	assert.Equal(t, 0.7, out.Candidates[0].Average)
	require.NotNil(t, out.Candidates[0].ScreeningScore)
	assert.Equal(t, 0.9, *out.Candidates[0].ScreeningScore)
	assert.Equal(t, cy.ID, out.Candidates[1].CandidateID)
	assert.Equal(t, DecisionBackup, out.Candidates[1].Decision)

	// the reviewer saw the advocate's rationale
	var sawPitch bool
	for _, p := range client.Prompts {
		if strings.HasPrefix(p, "reviewer|Ada|") && strings.Contains(p, "Ada pitch") {
			sawPitch = true
		}
	}
	assert.True(t, sawPitch)

	matches, err := store.MatchesForJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, ada.ID, matches[0].CandidateID)
	assert.Equal(t, db.MatchStatusPending, matches[0].Status)
	assert.Equal(t, db.SourceNegotiation, matches[0].Source)
	assert.Equal(t, "Ada pitch", matches[0].CandidateNotes)
	assert.Equal(t, "Ada review", matches[0].HiringNotes)
	assert.Equal(t, db.MatchStatusBackup, matches[1].Status)

	for _, m := range matches {
		assert.NotEqual(t, bob.ID, m.CandidateID)
	}

	msgs, err := bus.New(store).Receive(ctx, bus.AgentJill, bus.ReceiveOptions{Type: bus.TypeJobShortlist})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, out.MessageID, msgs[0].ID)
	assert.Equal(t, bus.AgentJack, msgs[0].FromAgent)
	assert.Equal(t, job.ID, msgs[0].Metadata["job_id"])
	shortlist, ok := msgs[0].Metadata["shortlist"].([]any)
	require.True(t, ok)
	assert.Len(t, shortlist, 2)
	assert.Equal(t, 2, report.Matches())
}

func writeArtifact(t *testing.T, root, rel, text string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
}

func TestRun_DiscoveryOrderBreaksTies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	root := t.TempDir()

	writeArtifact(t, root, "jobs/job_b.md", "# B\n")
	writeArtifact(t, root, "jobs/job_a.md", "# A\n")
	writeArtifact(t, root, "candidates/zed.md", "# Zed\n")
	writeArtifact(t, root, "candidates/amy.md", "# Amy\n")

	// Created in the opposite order to their files.
	noSpec, err := store.CreateJob(ctx, &db.JobInput{Title: "No Spec"})
	require.NoError(t, err)
	jobB, err := store.CreateJob(ctx, &db.JobInput{Title: "B", SpecFile: "jobs/job_b.md"})
	require.NoError(t, err)
	jobA, err := store.CreateJob(ctx, &db.JobInput{Title: "A", SpecFile: "./jobs/job_a.md"})
	require.NoError(t, err)
	loose, err := store.CreateCandidate(ctx, &db.CandidateInput{Name: "Loose"})
	require.NoError(t, err)
	zed, err := store.CreateCandidate(ctx, &db.CandidateInput{Name: "Zed", ProfileFile: "candidates/zed.md"})
	require.NoError(t, err)
	amy, err := store.CreateCandidate(ctx, &db.CandidateInput{Name: "Amy", ProfileFile: filepath.Join(root, "candidates", "amy.md")})
	require.NoError(t, err)

	client := scriptedClient(map[string]string{
		"screen":   "MATCH_SCORE: 0.8\nfine",
		"advocate": "MATCH_SCORE: 0.8\npitch",
		"reviewer": "MATCH_SCORE: 0.8\nreview",
	})
	b := bus.New(store)
	o := newOrchestrator(t, store, client, ShortlistStrategy())
	o.Artifacts = discovery.New(root, b)

	report, err := o.Run(ctx)
	require.NoError(t, err)

	var jobIDs []string
	for _, j := range report.Jobs {
		jobIDs = append(jobIDs, j.JobID)
	}
	assert.Equal(t, []string{jobA.ID, jobB.ID, noSpec.ID}, jobIDs)

	out := report.Jobs[0]
	var screened, shortlisted []string
	for _, sc := range out.Screened {
		screened = append(screened, sc.CandidateID)
	}
	for _, d := range out.Candidates {
		shortlisted = append(shortlisted, d.CandidateID)
	}
	assert.Equal(t, []string{amy.ID, zed.ID, loose.ID}, screened)
	assert.Equal(t, []string{amy.ID, zed.ID, loose.ID}, shortlisted)
}

func TestRun_ArtifactTextInPrompts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	root := t.TempDir()
	writeArtifact(t, root, "jobs/job_sre.md", "# SRE\n\nOn-call for the payments platform.")
	writeArtifact(t, root, "candidates/ada.md", "# Ada\n\nRan Kubernetes at scale.")

	_, err := store.CreateJob(ctx, &db.JobInput{Title: "SRE", SpecFile: "jobs/job_sre.md"})
	require.NoError(t, err)
	_, err = store.CreateCandidate(ctx, &db.CandidateInput{Name: "Ada", ProfileFile: "candidates/ada.md"})
	require.NoError(t, err)
	_, err = store.CreateCandidate(ctx, &db.CandidateInput{Name: "Gone", ProfileFile: "candidates/gone.md"})
	require.NoError(t, err)

	seen := map[string]map[string]string{}
	client := scriptedClient(map[string]string{"screen": "MATCH_SCORE: 0.1\nno"})
	o := newOrchestrator(t, store, client, ShortlistStrategy())
	o.Artifacts = discovery.New(root, nil)
	o.Prompts = func(key string, data map[string]string) (string, error) {
		seen[key+"|"+data["CandidateName"]] = data
		return keyedPrompts(key, data)
	}

	_, err = o.Run(ctx)
	require.NoError(t, err)

	require.Contains(t, seen, "screen|Ada")
	assert.Contains(t, seen["screen|Ada"]["JobSpec"], "payments platform")
	assert.Contains(t, seen["screen|Ada"]["Profile"], "Kubernetes at scale")
	require.Contains(t, seen, "screen|Gone")
	assert.Empty(t, seen["screen|Gone"]["Profile"])
}

func TestRun_VerboseProgress(t *testing.T) {
	store := newTestStore(t)
	addJob(t, store, "SRE")
	addCandidate(t, store, "Ada", "Go")
	client := scriptedClient(map[string]string{"screen": "MATCH_SCORE: 0.2\nno"})

	quiet := newOrchestrator(t, store, client, ShortlistStrategy())
	var quietOut bytes.Buffer
	quiet.Out = &quietOut
	_, err := quiet.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, quietOut.String(), "Screening 1 candidate(s)")
	assert.NotContains(t, quietOut.String(), "Ada: 0.20")

	verbose := newOrchestrator(t, store, client, ShortlistStrategy())
	var verboseOut bytes.Buffer
	verbose.Out = &verboseOut
	verbose.Verbose = true
	_, err = verbose.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, verboseOut.String(), "Ada: 0.20")
}

func TestRun_OracleFailuresDoNotAbort(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addJob(t, store, "SRE")
	addJob(t, store, "Data Engineer")
	addCandidate(t, store, "Ada")

	client := &llm.MockClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	report, err := newOrchestrator(t, store, client, ShortlistStrategy()).Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Jobs, 2)
	for _, j := range report.Jobs {
		assert.True(t, j.Skipped)
		require.Len(t, j.Screened, 1)
		assert.Equal(t, 0.0, j.Screened[0].Score)
		assert.Contains(t, j.Screened[0].Rationale, "quota exceeded")
	}
}

func TestRun_NoJobs(t *testing.T) {
	store := newTestStore(t)
	report, err := newOrchestrator(t, store, scriptedClient(nil), ShortlistStrategy()).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Jobs)
	assert.Contains(t, report.Notes, "no jobs found")
}

func TestRun_InvalidStrategy(t *testing.T) {
	store := newTestStore(t)
	s := ShortlistStrategy()
	s.ShortlistCap = 0
	_, err := newOrchestrator(t, store, scriptedClient(nil), s).Run(context.Background())
	assert.Error(t, err)
}

type staticSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (s *staticSearcher) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func TestRun_BoardroomAdmitsAndSkips(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	job := addJob(t, store, "Platform Engineer")
	ada := addCandidate(t, store, "Ada", "Go")
	bob := addCandidate(t, store, "Bob")

	client := scriptedClient(map[string]string{
		"boardroom-opening":    "We need a platform engineer.",
		"boardroom-pitch|Ada":  "SCORE: 9\nAda is great",
		"boardroom-pitch|Bob":  "SKIP",
		"boardroom-review|Ada": "SCORE: 8/10\nagreed",
	})
	searcher := &staticSearcher{}
	o := newOrchestrator(t, store, client, BoardroomStrategy())
	o.Searcher = searcher

	report, err := o.Run(ctx)
	require.NoError(t, err)
	out := report.Jobs[0]

	assert.Equal(t, "We need a platform engineer.", out.Opening)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, ada.ID, out.Candidates[0].CandidateID)
	assert.Equal(t, DecisionAdmit, out.Candidates[0].Decision)
	assert.Equal(t, 0.85, out.Candidates[0].Average)
	assert.Equal(t, bob.ID, out.Candidates[1].CandidateID)
	assert.Equal(t, DecisionNotPitched, out.Candidates[1].Decision)
	assert.Empty(t, searcher.queries, "no external search after an internal admit")

	matches, err := store.MatchesForJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, db.SourceNegotiationWin, matches[0].Source)
	assert.Equal(t, 0.85, matches[0].Score)

	msgs, err := bus.New(store).Receive(ctx, bus.AgentJack, bus.ReceiveOptions{Type: bus.TypeNegotiationResult})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, out.MessageID, msgs[0].ID)
}

func TestRun_BoardroomExternalFallback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addJob(t, store, "Platform Engineer")
	addCandidate(t, store, "Ada")

	client := scriptedClient(map[string]string{
		"boardroom-pitch|Ada":  "SCORE: 6\nmaybe",
		"boardroom-review|Ada": "SCORE: 5\nno",
	})
	searcher := &staticSearcher{results: []search.Result{
		{Title: "Grace Hopper - Platform Lead | LinkedIn", URL: "https://linkedin.com/in/grace"},
		{Title: "Some job", URL: "https://linkedin.com/jobs/view/1"},
	}}
	o := newOrchestrator(t, store, client, BoardroomStrategy())
	o.Searcher = searcher

	report, err := o.Run(ctx)
	require.NoError(t, err)
	out := report.Jobs[0]

	// the opening call failed so the templated statement is used
	assert.Contains(t, out.Opening, "Platform Engineer")
	assert.Equal(t, DecisionReject, out.Candidates[0].Decision)
	require.Len(t, out.External, 1)
	assert.Equal(t, "Grace Hopper", out.External[0].Name)
	require.Len(t, searcher.queries, 1)
	assert.Contains(t, searcher.queries[0], `"Platform Engineer"`)

	matches, err := store.ListMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NotEmpty(t, out.MessageID)
}

func TestRun_BoardroomEmptySearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	addJob(t, store, "Platform Engineer")

	o := newOrchestrator(t, store, scriptedClient(nil), BoardroomStrategy())
	o.Searcher = &staticSearcher{err: errors.New("blocked")}

	report, err := o.Run(ctx)
	require.NoError(t, err)
	out := report.Jobs[0]
	assert.Empty(t, out.External)
	assert.Empty(t, out.MessageID)
	last := out.Transcript[len(out.Transcript)-1]
	assert.Equal(t, SpeakerScout, last.Speaker)
	assert.Equal(t, "no external matches", last.Text)
}

func TestParseStrategies(t *testing.T) {
	ss, err := ParseStrategies([]byte(`
shortlist:
  interview_threshold: 0.75
strict:
  base: boardroom
  admit_threshold: 0.9
lenient:
  screen_threshold: 0.3
`))
	require.NoError(t, err)

	s, err := ss.Lookup("shortlist")
	require.NoError(t, err)
	assert.Equal(t, 0.75, s.InterviewThreshold)
	assert.Equal(t, 0.5, s.BackupThreshold)
	assert.Equal(t, 5, s.ShortlistCap)

	s, err = ss.Lookup("strict")
	require.NoError(t, err)
	assert.Equal(t, RoundsPitch, s.Rounds)
	assert.Equal(t, 0.9, s.AdmitThreshold)
	assert.Equal(t, 10.0, s.Scale)
	assert.Equal(t, "strict", s.Name)

	s, err = ss.Lookup("lenient")
	require.NoError(t, err)
	assert.Equal(t, RoundsCrossReview, s.Rounds)
	assert.Equal(t, 0.3, s.ScreenThreshold)

	assert.Equal(t, []string{"boardroom", "lenient", "shortlist", "strict"}, ss.Names())
	_, err = ss.Lookup("missing")
	assert.Error(t, err)
}

func TestParseStrategies_Invalid(t *testing.T) {
	_, err := ParseStrategies([]byte("bad:\n  base: nope\n"))
	assert.Error(t, err)

	_, err = ParseStrategies([]byte("shortlist:\n  interview_threshold: 1.5\n"))
	assert.Error(t, err)

	_, err = ParseStrategies([]byte("shortlist:\n  backup_threshold: 0.9\n"))
	assert.Error(t, err)

	ss, err := ParseStrategies(nil)
	require.NoError(t, err)
	assert.Len(t, ss, 2)
}

func TestLoadStrategies_EmptyPath(t *testing.T) {
	ss, err := LoadStrategies("")
	require.NoError(t, err)
	_, err = ss.Lookup(StrategyBoardroom)
	assert.NoError(t, err)
}
