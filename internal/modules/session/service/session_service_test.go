package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"plank/internal/modules/session/domain"
	"plank/internal/modules/session/service"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) time.Time {
	f.now = f.now.Add(d)
	return f.now
}

type seqID struct {
	n int
}

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type fakeStore struct {
	records  []domain.Record
	putErr   error
	clearErr error
	puts     int
}

func (f *fakeStore) LoadAll(context.Context) ([]domain.Record, error) {
	return append([]domain.Record(nil), f.records...), nil
}

func (f *fakeStore) Put(_ context.Context, record domain.Record) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) Clear(context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.records = nil
	return nil
}

type fakeExporter struct {
	exported []string
}

func (f *fakeExporter) Export(_ context.Context, dir string, record domain.Record) (string, error) {
	path := dir + "/" + record.ID + ".md"
	f.exported = append(f.exported, path)
	return path, nil
}

func newService(store *fakeStore, limit int) (*service.SessionService, *fakeClock) {
	clk := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	return service.NewSessionService(clk, &seqID{}, store, &fakeExporter{}, limit), clk
}

func TestStopAggregatesAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &fakeStore{}
	svc, clk := newService(store, 50)

	active, started := svc.Start(ctx)
	if !started || svc.Status() != domain.StatusTracking {
		t.Fatalf("expected tracking after start")
	}
	svc.RecordPhase("plank", clk.now)
	svc.RecordPhase("break", clk.advance(5*time.Second))
	svc.RecordPhase("plank", clk.advance(2*time.Second))
	clk.advance(3 * time.Second)

	record, ok, err := svc.Stop(ctx)
	if err != nil || !ok {
		t.Fatalf("stop: ok=%v err=%v", ok, err)
	}
	if record.ID != active.ID {
		t.Fatalf("record id %s, expected %s", record.ID, active.ID)
	}
	if record.TotalPlank != 8*time.Second || record.TotalBreak != 2*time.Second || record.LongestHold != 5*time.Second {
		t.Fatalf("unexpected metrics: %+v", record.Metrics)
	}
	if store.puts != 1 || svc.Status() != domain.StatusIdle {
		t.Fatalf("expected one persisted record and idle status")
	}
	if history := svc.History(0); len(history) != 1 || history[0].ID != record.ID {
		t.Fatalf("history: %+v", history)
	}
}

func TestSessionTimesAreWholeMilliseconds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clk := newService(&fakeStore{}, 50)
	clk.advance(300 * time.Microsecond)

	active, _ := svc.Start(ctx)
	svc.RecordPhase("plank", clk.advance(600*time.Microsecond))
	svc.RecordPhase("break", clk.advance(1600*time.Microsecond))
	clk.advance(2200 * time.Microsecond)

	record, ok, err := svc.Stop(ctx)
	if err != nil || !ok {
		t.Fatalf("stop: ok=%v err=%v", ok, err)
	}
	if active.StartedAt.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("start not truncated: %s", active.StartedAt)
	}
	for i, seg := range record.Segments {
		if seg.StartedAt.Nanosecond()%int(time.Millisecond) != 0 || seg.EndedAt.Nanosecond()%int(time.Millisecond) != 0 {
			t.Fatalf("segment %d has sub-millisecond bounds: %+v", i, seg)
		}
		if seg.Duration%time.Millisecond != 0 {
			t.Fatalf("segment %d duration %s is not whole milliseconds", i, seg.Duration)
		}
	}
	if record.TotalPlank != 2*time.Millisecond || record.TotalBreak != 2*time.Millisecond {
		t.Fatalf("unexpected metrics: %+v", record.Metrics)
	}
}

func TestStartIsNoOpWhileActive(t *testing.T) {
	t.Parallel()
	svc, clk := newService(&fakeStore{}, 50)
	first, _ := svc.Start(context.Background())
	clk.advance(time.Second)
	second, started := svc.Start(context.Background())
	if started || second.ID != first.ID || !second.StartedAt.Equal(first.StartedAt) {
		t.Fatalf("second start must return the existing session")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &fakeStore{}
	svc, clk := newService(store, 50)
	svc.Start(ctx)
	svc.RecordPhase("plank", clk.now)
	clk.advance(time.Second)

	if _, ok, err := svc.Stop(ctx); !ok || err != nil {
		t.Fatalf("first stop: ok=%v err=%v", ok, err)
	}
	if _, ok, err := svc.Stop(ctx); ok || err != nil {
		t.Fatalf("second stop must be a no-op: ok=%v err=%v", ok, err)
	}
	if store.puts != 1 || len(svc.History(0)) != 1 || svc.Status() != domain.StatusIdle {
		t.Fatalf("expected exactly one record")
	}
}

func TestEmptySessionProducesNoRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &fakeStore{}
	svc, _ := newService(store, 50)
	svc.Start(ctx)
	if _, ok, err := svc.Stop(ctx); ok || err != nil {
		t.Fatalf("empty session: ok=%v err=%v", ok, err)
	}
	if store.puts != 0 || len(svc.History(0)) != 0 {
		t.Fatalf("empty session must not be stored")
	}
}

func TestRecordPhaseWithoutSessionIsIgnored(t *testing.T) {
	t.Parallel()
	svc, clk := newService(&fakeStore{}, 50)
	if svc.RecordPhase("plank", clk.now) {
		t.Fatalf("record without session must be a no-op")
	}
	if _, ok := svc.Active(); ok {
		t.Fatalf("no active session expected")
	}
}

func TestStopPersistFailureStillEndsSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("disk full")
	store := &fakeStore{putErr: boom}
	svc, clk := newService(store, 50)
	svc.Start(ctx)
	svc.RecordPhase("plank", clk.now)
	clk.advance(2 * time.Second)

	record, ok, err := svc.Stop(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if !ok || record.TotalPlank != 2*time.Second {
		t.Fatalf("record must still be returned: %+v", record)
	}
	if svc.Status() != domain.StatusIdle {
		t.Fatalf("status must be idle after failed persist")
	}
	if _, active := svc.Active(); active {
		t.Fatalf("active session must be cleared")
	}
	if len(svc.History(0)) != 1 {
		t.Fatalf("history keeps the record even when persistence fails")
	}
}

func TestHistoryCapAcrossStops(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, clk := newService(&fakeStore{}, 50)
	var last string
	for i := 0; i < 51; i++ {
		active, _ := svc.Start(ctx)
		svc.RecordPhase("plank", clk.now)
		clk.advance(time.Second)
		if _, _, err := svc.Stop(ctx); err != nil {
			t.Fatalf("stop %d: %v", i, err)
		}
		last = active.ID
	}
	history := svc.History(0)
	if len(history) != 50 || history[0].ID != last {
		t.Fatalf("expected 50 records with the latest first, got %d (first %s)", len(history), history[0].ID)
	}
	if limited := svc.History(5); len(limited) != 5 {
		t.Fatalf("expected 5 records, got %d", len(limited))
	}
}

func TestHydrateAndReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{records: []domain.Record{
		{ID: "a", StartedAt: start},
		{ID: "b", StartedAt: start.Add(time.Hour)},
	}}
	svc, _ := newService(store, 50)
	if err := svc.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if history := svc.History(0); len(history) != 2 || history[0].ID != "b" {
		t.Fatalf("hydrated history: %+v", history)
	}

	store.clearErr = errors.New("locked")
	if err := svc.Reset(ctx); err == nil {
		t.Fatalf("expected reset error")
	}
	if len(svc.History(0)) != 2 {
		t.Fatalf("failed reset must keep history")
	}

	store.clearErr = nil
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(svc.History(0)) != 0 || len(store.records) != 0 {
		t.Fatalf("reset must clear memory and store")
	}
}

func TestLiveAndExport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	exporter := &fakeExporter{}
	clk := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	svc := service.NewSessionService(clk, &seqID{}, &fakeStore{}, exporter, 50)

	svc.Start(ctx)
	svc.RecordPhase("plank", clk.advance(time.Second))
	clk.advance(4 * time.Second)
	live, ok := svc.Live()
	if !ok || live.CurrentHold != 4*time.Second || live.Break != 0 || live.Elapsed != 5*time.Second {
		t.Fatalf("unexpected live metrics: %+v", live)
	}
	if _, _, err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	paths, err := svc.Export(ctx, "/notes")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(paths) != 1 || len(exporter.exported) != 1 {
		t.Fatalf("expected one exported note, got %v", paths)
	}
	if trend := svc.Trend(7); trend.Total != 4*time.Second {
		t.Fatalf("trend total: %s", trend.Total)
	}
}
