package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStoreRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []*Run{
		{OperationID: "CreateArticle", DocumentVersion: "1.0.0", Decisions: []string{"ADDED_BY_API body:slug"}, CreatedAt: base},
		{OperationID: "ListArticles", DocumentVersion: "1.0.0", Decisions: []string{"USER_REMOVED_TOMBSTONE query:email"}, CreatedAt: base.Add(time.Minute)},
		{OperationID: "CreateArticle", DocumentVersion: "1.1.0", Decisions: []string{"TYPE_CHANGED body:count"}, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range runs {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if r.RunID == "" {
			t.Error("Record did not assign a run id")
		}
	}

	got, err := store.ByOperation(ctx, "CreateArticle", 10)
	if err != nil {
		t.Fatalf("ByOperation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ByOperation returned %d runs, want 2", len(got))
	}
	if got[0].DocumentVersion != "1.1.0" {
		t.Errorf("newest first: got %q, want 1.1.0", got[0].DocumentVersion)
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d runs, want 2", len(recent))
	}
	if recent[0].OperationID != "CreateArticle" || recent[1].OperationID != "ListArticles" {
		t.Errorf("recent order = %s, %s", recent[0].OperationID, recent[1].OperationID)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	run := &Run{
		OperationID:     "CreateArticle",
		DocumentVersion: "1.0.0",
		Decisions:       []string{"ADDED_BY_API body:slug", "OPTIONAL_TO_REQUIRED body:title"},
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.ByOperation(ctx, "CreateArticle", 10)
	if err != nil {
		t.Fatalf("ByOperation: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ByOperation returned %d runs, want 1", len(got))
	}
	if got[0].RunID != run.RunID {
		t.Errorf("run id = %q, want %q", got[0].RunID, run.RunID)
	}
	if len(got[0].Decisions) != 2 || got[0].Decisions[0] != "ADDED_BY_API body:slug" {
		t.Errorf("decisions = %v", got[0].Decisions)
	}

	other, err := store.ByOperation(ctx, "Unknown", 10)
	if err != nil {
		t.Fatalf("ByOperation: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unknown operation returned %d runs", len(other))
	}
}
