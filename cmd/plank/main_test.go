package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sessionoutadapter "plank/internal/modules/session/adapter/out"
	"plank/internal/modules/session/domain"
)

// Not parallel: every command initialises the process-wide logger.

func runPlank(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seedRecord(t *testing.T, dataDir string) {
	t.Helper()
	store, err := sessionoutadapter.NewSQLiteRecordStore(filepath.Join(dataDir, "plank.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	start := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	segments := []domain.Segment{
		{ID: "seg-1", State: domain.StatePlank, StartedAt: start, EndedAt: start.Add(30 * time.Second), Duration: 30 * time.Second},
	}
	record := domain.Record{ID: "sess-1", StartedAt: start, EndedAt: start.Add(30 * time.Second), Segments: segments, Metrics: domain.Summarize(segments)}
	if err := store.Put(context.Background(), record); err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func TestHistoryResetSkipsEmptyHistory(t *testing.T) {
	out, err := runPlank(t, "--data-dir", t.TempDir(), "history", "reset")
	if err != nil {
		t.Fatalf("reset on empty history: %v", err)
	}
	if !strings.Contains(out, "no sessions to clear") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHistoryResetRequiresYes(t *testing.T) {
	dataDir := t.TempDir()
	seedRecord(t, dataDir)

	if _, err := runPlank(t, "--data-dir", dataDir, "history", "reset"); err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected refusal without --yes, got %v", err)
	}
	out, err := runPlank(t, "--data-dir", dataDir, "history")
	if err != nil || !strings.Contains(out, "sess-1") {
		t.Fatalf("history must survive a refused reset: out=%q err=%v", out, err)
	}

	out, err = runPlank(t, "--data-dir", dataDir, "history", "reset", "--yes")
	if err != nil || !strings.Contains(out, "history cleared") {
		t.Fatalf("confirmed reset: out=%q err=%v", out, err)
	}
	out, err = runPlank(t, "--data-dir", dataDir, "history")
	if err != nil || !strings.Contains(out, "no sessions") {
		t.Fatalf("expected empty history after reset: out=%q err=%v", out, err)
	}
}
