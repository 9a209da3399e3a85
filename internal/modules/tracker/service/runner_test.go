package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sessionservice "plank/internal/modules/session/service"
	sessionusecase "plank/internal/modules/session/usecase"
	"plank/internal/modules/tracker/domain"
	"plank/internal/modules/tracker/dto"
	"plank/internal/modules/tracker/service"
	"plank/internal/platform/clock"
	apperrors "plank/internal/platform/errors"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), ticks: make(chan time.Time, 1)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeClock) NewTicker(time.Duration) clock.Ticker {
	return fakeTicker{c: f.ticks}
}

// Tick delivers a tick if the loop is ready for one.
func (f *fakeClock) Tick() {
	select {
	case f.ticks <- f.Now():
	default:
	}
}

type fakeTicker struct {
	c chan time.Time
}

func (t fakeTicker) C() <-chan time.Time { return t.c }
func (fakeTicker) Stop()                 {}

type fakeEvaluator struct {
	mu      sync.Mutex
	reading domain.Reading
	err     error
	calls   int
	gate    chan struct{}
}

func (f *fakeEvaluator) Set(reading domain.Reading, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading = reading
	f.err = err
}

func (f *fakeEvaluator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEvaluator) Evaluate(ctx context.Context) (domain.Reading, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Reading{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reading, f.err
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type harness struct {
	clock     *fakeClock
	evaluator *fakeEvaluator
	runner    *service.Runner
	cancel    context.CancelFunc
	exited    chan struct{}
}

func newHarness(t *testing.T, calibration time.Duration) *harness {
	t.Helper()
	clk := newFakeClock()
	evaluator := &fakeEvaluator{}
	sessions := sessionusecase.NewInteractor(sessionservice.NewSessionService(clk, &seqID{}, nil, nil, 50))
	runner := service.NewRunner(clk, evaluator, sessions, service.Options{
		TickInterval: time.Millisecond,
		Calibration:  calibration,
		Thresholds:   domain.DefaultThresholds(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{clock: clk, evaluator: evaluator, runner: runner, cancel: cancel, exited: make(chan struct{})}
	go func() {
		defer close(h.exited)
		_ = runner.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-h.exited
	})
	return h
}

// driveUntil keeps ticking until the snapshot satisfies cond.
func (h *harness) driveUntil(t *testing.T, cond func(dto.SnapshotOutput) bool) dto.SnapshotOutput {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.clock.Tick()
		snap, err := h.runner.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if cond(snap) {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
	return dto.SnapshotOutput{}
}

func phaseIs(phase domain.Phase) func(dto.SnapshotOutput) bool {
	return func(s dto.SnapshotOutput) bool { return s.Phase == string(phase) }
}

func drain(ch <-chan dto.PhaseChange) []string {
	phases := []string{}
	for {
		select {
		case change, ok := <-ch:
			if !ok {
				return phases
			}
			phases = append(phases, change.Phase)
		default:
			return phases
		}
	}
}

func TestRunnerRecordsSegmentsFromPhaseChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, 0)
	changes, cancel := h.runner.Subscribe(16)
	defer cancel()

	if _, err := h.runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.evaluator.Set(domain.Reading{Detected: true, Score: 0.9}, nil)
	h.driveUntil(t, phaseIs(domain.PhasePlank))

	h.clock.Advance(5 * time.Second)
	h.evaluator.Set(domain.Reading{}, nil)
	h.driveUntil(t, phaseIs(domain.PhaseBreak))

	h.clock.Advance(2 * time.Second)
	h.evaluator.Set(domain.Reading{Detected: true, Score: 0.8}, nil)
	snap := h.driveUntil(t, phaseIs(domain.PhasePlank))
	if snap.Status != "tracking" || !snap.HasActive || len(snap.Active.Segments) != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	h.clock.Advance(3 * time.Second)
	stopped, err := h.runner.Stop(ctx)
	if err != nil || !stopped.Recorded {
		t.Fatalf("stop: %+v %v", stopped, err)
	}
	record := stopped.Record
	if record.TotalPlank != 8*time.Second || record.TotalBreak != 2*time.Second || record.LongestHold != 5*time.Second {
		t.Fatalf("unexpected record: %+v", record)
	}

	want := []string{"calibrating", "plank", "break", "plank", "idle"}
	got := drain(changes)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected changes %v, got %v", want, got)
	}

	snap, err = h.runner.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Status != "idle" || snap.Phase != "idle" || snap.HasActive || !snap.HasLatest || snap.Latest.ID != record.ID {
		t.Fatalf("unexpected idle snapshot: %+v", snap)
	}
}

func TestRunnerHoldsCalibrationWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, 1500*time.Millisecond)
	if _, err := h.runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.evaluator.Set(domain.Reading{Detected: true, Score: 0.95}, nil)
	snap := h.driveUntil(t, func(dto.SnapshotOutput) bool { return h.evaluator.Calls() >= 5 })
	if snap.Phase != string(domain.PhaseCalibrating) {
		t.Fatalf("expected calibrating before the deadline, got %s", snap.Phase)
	}
	if snap.CalibrationRemaining != 1500*time.Millisecond {
		t.Fatalf("remaining: %s", snap.CalibrationRemaining)
	}
	h.clock.Advance(1500 * time.Millisecond)
	h.driveUntil(t, phaseIs(domain.PhasePlank))
}

func TestRunnerDiscardsResultsFromAnEndedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, 0)
	gate := make(chan struct{})
	h.evaluator.mu.Lock()
	h.evaluator.gate = gate
	h.evaluator.mu.Unlock()
	h.evaluator.Set(domain.Reading{Detected: true, Score: 0.9}, nil)

	if _, err := h.runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clock.Tick()
	// Wait until the tick has been consumed so a detection pass is in flight.
	deadline := time.Now().Add(2 * time.Second)
	for len(h.clock.ticks) > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if _, err := h.runner.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := h.runner.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}

	gate <- struct{}{}
	for h.evaluator.Calls() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	for i := 0; i < 20; i++ {
		snap, err := h.runner.Snapshot(ctx)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if snap.Phase != string(domain.PhaseCalibrating) || len(snap.Active.Segments) != 0 {
			t.Fatalf("stale result leaked into the new session: %+v", snap)
		}
		time.Sleep(time.Millisecond)
	}

	close(gate)
	snap := h.driveUntil(t, phaseIs(domain.PhasePlank))
	if len(snap.Active.Segments) != 1 {
		t.Fatalf("expected one segment from the fresh tick, got %d", len(snap.Active.Segments))
	}
}

func TestRunnerTreatsEvaluationErrorsAsMissingLandmarks(t *testing.T) {
	t.Parallel()
	h := newHarness(t, 0)
	if _, err := h.runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.evaluator.Set(domain.Reading{Detected: true, Score: 0.99}, apperrors.ErrNoLandmarkSource)
	snap := h.driveUntil(t, phaseIs(domain.PhaseBreak))
	if snap.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %.2f", snap.Confidence)
	}
}

func TestRunnerStartAndStopAreIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, 0)

	first, err := h.runner.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := h.runner.Start(ctx)
	if err != nil || !second.AlreadyActive || second.SessionID != first.SessionID {
		t.Fatalf("second start: %+v %v", second, err)
	}

	stopped, err := h.runner.Stop(ctx)
	if err != nil || stopped.Recorded {
		t.Fatalf("empty session must not be recorded: %+v %v", stopped, err)
	}
	again, err := h.runner.Stop(ctx)
	if err != nil || again.Recorded {
		t.Fatalf("second stop: %+v %v", again, err)
	}
	history, err := h.runner.History(ctx, 0)
	if err != nil || len(history) != 0 {
		t.Fatalf("history must stay empty: %+v %v", history, err)
	}
}

func TestRunnerStopsSessionOnShutdown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, 0)
	changes, _ := h.runner.Subscribe(8)

	if _, err := h.runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.evaluator.Set(domain.Reading{Detected: true, Score: 0.9}, nil)
	h.driveUntil(t, phaseIs(domain.PhasePlank))

	h.cancel()
	<-h.exited

	if _, err := h.runner.Start(ctx); !errors.Is(err, apperrors.ErrTrackerNotRunning) {
		t.Fatalf("expected tracker not running, got %v", err)
	}
	got := []string{}
	for change := range changes {
		got = append(got, change.Phase)
	}
	if len(got) == 0 || got[len(got)-1] != "idle" {
		t.Fatalf("expected the stream to end with idle, got %v", got)
	}
	late, cancel := h.runner.Subscribe(1)
	defer cancel()
	if _, ok := <-late; ok {
		t.Fatalf("subscribing after shutdown must yield a closed channel")
	}
}
