package scout

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
)

type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func setup(t *testing.T, client llm.Client, s search.Searcher) (*Scout, *db.DB) {
	t.Helper()
	ctx := context.Background()
	store, err := db.Open(ctx, db.Options{Driver: db.DriverSQLite, DSN: filepath.Join(t.TempDir(), "scout.db")})
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() { _ = store.Close() })
	return &Scout{Store: store, Bus: bus.New(store), Oracle: oracle.New(client), Searcher: s}, store
}

func scoreByName(scores map[string]string) *llm.MockClient {
	return &llm.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			for name, answer := range scores {
				if strings.Contains(prompt, "CANDIDATE: "+name) {
					return answer, nil
				}
			}
			return "", errors.New("unexpected prompt")
		},
	}
}

func TestSourceCandidates_InternalMatchSkipsSearch(t *testing.T) {
	ctx := context.Background()
	searcher := &fakeSearcher{}
	sc, store := setup(t, scoreByName(map[string]string{
		"Ada": "MATCH_SCORE: 0.85\ngreat fit",
		"Bob": "MATCH_SCORE: 0.3\nno",
	}), searcher)

	job, err := store.CreateJob(ctx, &db.JobInput{Title: "SRE", Requirements: []string{"Kubernetes"}})
	require.NoError(t, err)
	ada, err := store.CreateCandidate(ctx, &db.CandidateInput{Name: "Ada", Skills: []string{"Go"}})
	require.NoError(t, err)
	_, err = store.CreateCandidate(ctx, &db.CandidateInput{Name: "Bob"})
	require.NoError(t, err)

	report, err := sc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Jobs, 1)
	res := report.Jobs[0]
	require.Len(t, res.InternalMatch, 1)
	assert.Equal(t, ada.ID, res.InternalMatch[0].CandidateID)
	assert.Equal(t, 1, report.InternalMatches())

	// only the per-candidate job searches ran
	for _, q := range searcher.queries {
		assert.NotContains(t, q, "linkedin.com/in/")
	}

	matches, err := store.MatchesForJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, db.SourceInternalDB, matches[0].Source)
	assert.Equal(t, 0.85, matches[0].Score)

	msgs, err := bus.New(store).Receive(ctx, bus.AgentJill, bus.ReceiveOptions{Type: bus.TypeInternalMatchFound})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, bus.AgentScout, msgs[0].FromAgent)
}

func TestSourceCandidates_ExternalSearch(t *testing.T) {
	ctx := context.Background()
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Grace Hopper - SRE | LinkedIn", URL: "https://linkedin.com/in/grace"},
	}}
	sc, store := setup(t, &llm.MockClient{}, searcher)

	job, err := store.CreateJob(ctx, &db.JobInput{Title: "SRE", Requirements: []string{"a", "b", "c", "d", "e", "f"}})
	require.NoError(t, err)
	// an unreadable answer scores neutral 0.5, below the internal bar
	cand := db.Candidate{ID: "c1", Name: "Ada"}

	res, err := sc.SourceCandidates(ctx, *job, []db.Candidate{cand})
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.InternalScores["c1"])
	assert.Empty(t, res.InternalMatch)
	require.Len(t, res.External, 1)
	assert.Equal(t, "Grace Hopper", res.External[0].Name)
	assert.Contains(t, res.Query, `"SRE"`)
	assert.NotEmpty(t, res.MessageID)

	msgs, err := bus.New(store).Receive(ctx, bus.AgentJack, bus.ReceiveOptions{Type: bus.TypeCandidateRecommendation})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestSourceCandidates_EmptySearchSendsNothing(t *testing.T) {
	ctx := context.Background()
	sc, store := setup(t, &llm.MockClient{}, &fakeSearcher{err: errors.New("blocked")})
	job, err := store.CreateJob(ctx, &db.JobInput{Title: "SRE"})
	require.NoError(t, err)

	res, err := sc.SourceCandidates(ctx, *job, nil)
	require.NoError(t, err)
	assert.Empty(t, res.External)
	assert.Empty(t, res.MessageID)
}

func TestQueryTerms(t *testing.T) {
	client := &llm.MockClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "```json\n[\"Go\", \"Kubernetes\"]\n```", nil
		},
	}
	sc := &Scout{Oracle: oracle.New(client)}
	ctx := context.Background()

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, sc.queryTerms(ctx, db.Job{Requirements: []string{"a", "b", "c", "d", "e", "f"}}))
	assert.Equal(t, []string{"Go", "Kubernetes"}, sc.queryTerms(ctx, db.Job{Title: "SRE"}))

	sc.Oracle = oracle.New(nil)
	assert.Equal(t, []string{"SRE"}, sc.queryTerms(ctx, db.Job{Title: "SRE"}))
}

func TestSourceJobs(t *testing.T) {
	ctx := context.Background()
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Backend Engineer at Acme | LinkedIn", URL: "https://linkedin.com/jobs/view/1"},
		{Title: "Ada - SRE | LinkedIn", URL: "https://linkedin.com/in/ada"},
	}}
	sc, store := setup(t, &llm.MockClient{}, searcher)

	c := db.Candidate{ID: "c1", Name: "Ada", Preferences: db.Preferences{Location: "Berlin", Industries: []string{"fintech"}}}
	res, err := sc.SourceJobs(ctx, c)
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "Acme", res.Jobs[0].Company)
	assert.Contains(t, res.Query, `"software"`)
	assert.Contains(t, res.Query, `"Berlin"`)
	assert.Len(t, res.MessageIDs, 2)

	b := bus.New(store)
	jack, err := b.Receive(ctx, bus.AgentJack, bus.ReceiveOptions{Type: bus.TypeJobRecommendation})
	require.NoError(t, err)
	assert.Len(t, jack, 1)
	jill, err := b.Receive(ctx, bus.AgentJill, bus.ReceiveOptions{Type: bus.TypeOutreachOpportunity})
	require.NoError(t, err)
	assert.Len(t, jill, 1)
}

func TestSourceJobs_NoResults(t *testing.T) {
	sc, _ := setup(t, &llm.MockClient{}, &fakeSearcher{})
	res, err := sc.SourceJobs(context.Background(), db.Candidate{ID: "c1", Name: "Ada", Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.Empty(t, res.MessageIDs)
}
