package out_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sessionout "plank/internal/modules/session/adapter/out"
	"plank/internal/modules/session/domain"
)

var base = time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

func sampleRecord(id string, offset time.Duration) domain.Record {
	start := base.Add(offset)
	segments := []domain.Segment{
		{ID: id + "-1", State: domain.StatePlank, StartedAt: start, EndedAt: start.Add(5 * time.Second), Duration: 5 * time.Second},
		{ID: id + "-2", State: domain.StateBreak, StartedAt: start.Add(5 * time.Second), EndedAt: start.Add(7 * time.Second), Duration: 2 * time.Second},
		{ID: id + "-3", State: domain.StatePlank, StartedAt: start.Add(7 * time.Second), EndedAt: start.Add(10 * time.Second), Duration: 3 * time.Second},
	}
	return domain.Record{ID: id, StartedAt: start, EndedAt: start.Add(10 * time.Second), Segments: segments, Metrics: domain.Summarize(segments)}
}

func TestSQLiteRecordStorePutLoadClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := sessionout.NewSQLiteRecordStore(filepath.Join(t.TempDir(), "nested", "plank.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	older := sampleRecord("older", 0)
	newer := sampleRecord("newer", time.Hour)
	for _, record := range []domain.Record{older, newer} {
		if err := store.Put(ctx, record); err != nil {
			t.Fatalf("put %s: %v", record.ID, err)
		}
	}
	if err := store.Put(ctx, older); err != nil {
		t.Fatalf("re-put must upsert: %v", err)
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(records) != 2 || records[0].ID != "newer" || records[1].ID != "older" {
		t.Fatalf("expected newer then older, got %+v", records)
	}
	got := records[1]
	if !got.StartedAt.Equal(older.StartedAt) || !got.EndedAt.Equal(older.EndedAt) {
		t.Fatalf("timestamps not preserved: %+v", got)
	}
	if got.TotalPlank != 8*time.Second || got.TotalBreak != 2*time.Second || got.LongestHold != 5*time.Second {
		t.Fatalf("metrics not preserved: %+v", got.Metrics)
	}
	if len(got.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got.Segments))
	}
	for i, seg := range got.Segments {
		want := older.Segments[i]
		if seg.ID != want.ID || seg.State != want.State || !seg.StartedAt.Equal(want.StartedAt) || !seg.EndedAt.Equal(want.EndedAt) || seg.Duration != want.Duration {
			t.Fatalf("segment %d mismatch: got %+v want %+v", i, seg, want)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	records, err = store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty store, got %d", len(records))
	}
}

func TestSQLiteRecordStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plank.db")
	store, err := sessionout.NewSQLiteRecordStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Put(ctx, sampleRecord("kept", 0)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := sessionout.NewSQLiteRecordStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	records, err := reopened.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(records) != 1 || records[0].ID != "kept" {
		t.Fatalf("expected kept record, got %+v", records)
	}
}

func TestSQLiteRecordStoreKeepsSegmentsAndTotalsConsistent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := sessionout.NewSQLiteRecordStore(filepath.Join(t.TempDir(), "plank.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("seg-%d", n)
	}
	active := domain.NewActiveSession("sub-ms", base)
	active.Record(domain.StatePlank, base.Add(900*time.Microsecond), newID)
	active.Record(domain.StateBreak, base.Add(2500*time.Microsecond), newID)
	active.Record(domain.StatePlank, base.Add(3100*time.Microsecond), newID)
	record, ok := domain.NewRecord(active, base.Add(4700*time.Microsecond))
	if !ok {
		t.Fatalf("expected a record")
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	got := records[0]
	for i, seg := range got.Segments {
		if seg.Open() {
			t.Fatalf("segment %d reloaded as open: %+v", i, seg)
		}
		if seg.Duration != seg.EndedAt.Sub(seg.StartedAt) {
			t.Fatalf("segment %d duration %s does not match bounds %s", i, seg.Duration, seg.EndedAt.Sub(seg.StartedAt))
		}
	}
	if want := domain.Summarize(got.Segments); got.Metrics != want {
		t.Fatalf("reloaded totals %+v not derived from segments %+v", got.Metrics, want)
	}
}

func TestSQLiteRecordStoreKeepsOpenSegmentOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := sessionout.NewSQLiteRecordStore(filepath.Join(t.TempDir(), "plank.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	record := sampleRecord("open-tail", 0)
	last := &record.Segments[len(record.Segments)-1]
	last.EndedAt = time.Time{}
	last.Duration = 0
	record.Metrics = domain.Summarize(record.Segments)
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	segs := records[0].Segments
	if !segs[len(segs)-1].Open() || segs[0].Open() {
		t.Fatalf("open flags not preserved: %+v", segs)
	}
	if records[0].TotalPlank != 5*time.Second {
		t.Fatalf("open segment must not count, got %s", records[0].TotalPlank)
	}
}
