//go:build integration

package db

import (
	"context"
	"os"
	"testing"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	d, err := Open(ctx, Options{Driver: DriverPostgres, DSN: dsn, LockPath: t.TempDir() + "/schema.lock"})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := d.Init(ctx); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}

	// Clean up test data before each test
	_, _ = d.db.ExecContext(ctx, "DELETE FROM matches")
	_, _ = d.db.ExecContext(ctx, "DELETE FROM agent_messages WHERE to_agent LIKE 'itest-%'")
	_, _ = d.db.ExecContext(ctx, "DELETE FROM outreach_queue WHERE target_name LIKE 'itest-%'")

	return d
}

func TestIntegration_Postgres_Messages(t *testing.T) {
	d := getTestDB(t)
	defer d.Close()
	ctx := context.Background()

	msg, err := d.InsertMessage(ctx, &MessageInput{FromAgent: "Jack", ToAgent: "itest-Jill", Type: "job_shortlist", Content: "hello"})
	if err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	if msg.Read {
		t.Error("new message should be unread")
	}

	list, err := d.ListMessages(ctx, MessageFilter{ToAgent: "itest-Jill", UnreadOnly: true, NewestFirst: true})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(list) != 1 || list[0].Content != "hello" {
		t.Fatalf("ListMessages = %+v, want one message with content hello", list)
	}

	for i := 0; i < 2; i++ {
		if err := d.MarkMessageRead(ctx, msg.ID); err != nil {
			t.Fatalf("MarkMessageRead #%d failed: %v", i+1, err)
		}
	}
	got, err := d.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if !got.Read {
		t.Error("message should be read")
	}
}

func TestIntegration_Postgres_MatchPatch(t *testing.T) {
	d := getTestDB(t)
	defer d.Close()
	ctx := context.Background()

	c, err := d.CreateCandidate(ctx, &CandidateInput{Name: "itest-candidate"})
	if err != nil {
		t.Fatalf("CreateCandidate failed: %v", err)
	}
	j, err := d.CreateJob(ctx, &JobInput{Title: "itest-job"})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	m, err := d.CreateMatch(ctx, &MatchInput{CandidateID: c.ID, JobID: j.ID, Score: 0.75, Source: SourceNegotiation, CandidateNotes: "keep"})
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}

	status := MatchStatusApproved
	if err := d.UpdateMatch(ctx, m.ID, MatchPatch{Status: &status}); err != nil {
		t.Fatalf("UpdateMatch failed: %v", err)
	}
	got, err := d.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMatch failed: %v", err)
	}
	if got.Status != MatchStatusApproved {
		t.Errorf("Status = %q, want %q", got.Status, MatchStatusApproved)
	}
	if got.CandidateNotes != "keep" {
		t.Errorf("CandidateNotes = %q, want keep", got.CandidateNotes)
	}
}
