package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/config"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/search"
)

// testEnv points every command at a temporary database and content root.
type testEnv struct {
	dbPath string
	root   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GEMINI_API_KEY", "")
	for _, k := range []string{"RECRUITER_DATABASE_URL", "RECRUITER_CONTENT_ROOT", "RECRUITER_REPORT_DIR", "RECRUITER_STRATEGY"} {
		t.Setenv(k, "")
	}
	return &testEnv{dbPath: filepath.Join(dir, "recruiter.db"), root: dir}
}

// stubLLM makes every command use client instead of a Gemini client.
func stubLLM(t *testing.T, client llm.Client) {
	t.Helper()
	orig := newLLMClient
	newLLMClient = func(context.Context, *config.Config) (llm.Client, error) { return client, nil }
	t.Cleanup(func() { newLLMClient = orig })
}

type staticSearcher struct {
	results []search.Result
	queries []string
}

func (s *staticSearcher) Search(_ context.Context, query string, limit int) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	if limit > 0 && len(s.results) > limit {
		return s.results[:limit], nil
	}
	return s.results, nil
}

func stubSearch(t *testing.T, s search.Searcher) {
	t.Helper()
	orig := newSearcher
	newSearcher = func(*config.Config) search.Searcher { return s }
	t.Cleanup(func() { newSearcher = orig })
}

// run executes the root command in-process with env's database and root.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--db", e.dbPath, "--root", e.root}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// resetFlags restores every flag to its default so values do not leak
// between in-process executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
