package service

import (
	"context"
	"sync"
	"time"

	sessiondto "plank/internal/modules/session/dto"
	sessionin "plank/internal/modules/session/port/in"
	"plank/internal/modules/tracker/domain"
	"plank/internal/modules/tracker/dto"
	trackerout "plank/internal/modules/tracker/port/out"
	"plank/internal/platform/clock"
	apperrors "plank/internal/platform/errors"
	"plank/internal/platform/log"
)

type Options struct {
	TickInterval time.Duration
	Calibration  time.Duration
	Thresholds   domain.Thresholds
}

// Runner owns the classifier and every session mutation. All state below the command
// channel is touched only by the Run goroutine.
type Runner struct {
	clock     clock.TickClock
	evaluator trackerout.LandmarkEvaluator
	sessions  sessionin.Usecase
	opts      Options

	cmds    chan command
	results chan tickResult
	done    chan struct{}
	once    sync.Once

	subMu   sync.Mutex
	subs    map[int]chan dto.PhaseChange
	nextSub int

	classifier domain.Classifier
	tracking   bool
	epoch      uint64
	inFlight   bool
	ticker     clock.Ticker
}

type command struct {
	run   func(ctx context.Context) (any, error)
	reply chan commandResult
}

type commandResult struct {
	value any
	err   error
}

type tickResult struct {
	epoch   uint64
	reading domain.Reading
	err     error
}

func NewRunner(clk clock.TickClock, evaluator trackerout.LandmarkEvaluator, sessions sessionin.Usecase, opts Options) *Runner {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 16 * time.Millisecond
	}
	if opts.Calibration < 0 {
		opts.Calibration = 0
	}
	return &Runner{
		clock:      clk,
		evaluator:  evaluator,
		sessions:   sessions,
		opts:       opts,
		cmds:       make(chan command),
		results:    make(chan tickResult, 1),
		done:       make(chan struct{}),
		subs:       map[int]chan dto.PhaseChange{},
		classifier: domain.NewClassifier(opts.Thresholds),
	}
}

// Run executes the tick loop until ctx is cancelled. An active session is stopped on the way out.
func (r *Runner) Run(ctx context.Context) error {
	defer r.shutdown()
	for {
		select {
		case <-ctx.Done():
			if r.tracking {
				if _, err := r.stop(context.WithoutCancel(ctx)); err != nil {
					log.Warnw("stop session on shutdown", "error", err)
				}
			}
			return nil
		case cmd := <-r.cmds:
			value, err := cmd.run(ctx)
			cmd.reply <- commandResult{value: value, err: err}
		case <-r.tickC():
			r.tick(ctx)
		case res := <-r.results:
			r.observe(ctx, res)
		}
	}
}

func (r *Runner) shutdown() {
	r.once.Do(func() {
		if r.ticker != nil {
			r.ticker.Stop()
			r.ticker = nil
		}
		close(r.done)
		r.subMu.Lock()
		for id, ch := range r.subs {
			close(ch)
			delete(r.subs, id)
		}
		r.subMu.Unlock()
	})
}

func (r *Runner) tickC() <-chan time.Time {
	if r.ticker == nil {
		return nil
	}
	return r.ticker.C()
}

// tick launches one detection pass unless one is still running.
func (r *Runner) tick(ctx context.Context) {
	if !r.tracking || r.inFlight {
		return
	}
	r.inFlight = true
	epoch := r.epoch
	go func() {
		reading, err := r.evaluator.Evaluate(ctx)
		select {
		case r.results <- tickResult{epoch: epoch, reading: reading, err: err}:
		case <-r.done:
		}
	}()
}

func (r *Runner) observe(ctx context.Context, res tickResult) {
	r.inFlight = false
	if !r.tracking || res.epoch != r.epoch {
		log.Debugw("discarded stale tick result", "epoch", res.epoch, "current", r.epoch)
		return
	}
	reading := res.reading
	if res.err != nil {
		log.Debugw("landmark evaluation failed", "error", res.err)
		reading = domain.Reading{}
	}
	next, change, ok := r.classifier.Observe(r.clock.Now(), reading)
	r.classifier = next
	if ok {
		r.emit(ctx, change)
	}
}

func (r *Runner) emit(ctx context.Context, change domain.Change) {
	if change.Phase.Recordable() {
		err := r.sessions.RecordPhase(ctx, sessiondto.RecordPhaseInput{Phase: string(change.Phase), At: change.At})
		if err != nil {
			log.Warnw("record phase change", "phase", change.Phase, "error", err)
		}
	}
	r.publish(dto.PhaseChange{Phase: string(change.Phase), Confidence: change.Confidence, At: change.At})
}

func (r *Runner) publish(change dto.PhaseChange) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func (r *Runner) start(ctx context.Context) (dto.StartOutput, error) {
	if r.tracking {
		active, err := r.sessions.GetActive(ctx)
		if err != nil {
			return dto.StartOutput{}, err
		}
		return dto.StartOutput{SessionID: active.SessionID, StartedAt: active.StartedAt, AlreadyActive: true}, nil
	}
	started, err := r.sessions.Start(ctx)
	if err != nil {
		return dto.StartOutput{}, err
	}
	r.tracking = true
	r.epoch++
	next, change, _ := r.classifier.Start(r.clock.Now(), r.opts.Calibration)
	r.classifier = next
	r.ticker = r.clock.NewTicker(r.opts.TickInterval)
	r.emit(ctx, change)
	return dto.StartOutput{SessionID: started.SessionID, StartedAt: started.StartedAt, AlreadyActive: started.AlreadyActive}, nil
}

func (r *Runner) stop(ctx context.Context) (sessiondto.StopOutput, error) {
	if !r.tracking {
		return sessiondto.StopOutput{}, nil
	}
	r.tracking = false
	r.epoch++
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	next, change, ok := r.classifier.Stop(r.clock.Now())
	r.classifier = next
	if ok {
		r.emit(ctx, change)
	}
	return r.sessions.Stop(ctx)
}

func (r *Runner) snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	now := r.clock.Now()
	out := dto.SnapshotOutput{
		Status:               "idle",
		Phase:                string(r.classifier.Phase),
		Confidence:           r.classifier.Confidence,
		CalibrationRemaining: r.classifier.CalibrationRemaining(now),
	}
	if r.tracking {
		out.Status = "tracking"
		active, err := r.sessions.GetActive(ctx)
		if err != nil {
			return dto.SnapshotOutput{}, err
		}
		out.HasActive = true
		out.Active = active
	}
	latest, err := r.sessions.History(ctx, 1)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	if len(latest) > 0 {
		out.HasLatest = true
		out.Latest = latest[0]
	}
	return out, nil
}

func (r *Runner) do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	cmd := command{run: fn, reply: make(chan commandResult, 1)}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return nil, apperrors.ErrTrackerNotRunning
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Runner) Start(ctx context.Context) (dto.StartOutput, error) {
	value, err := r.do(ctx, func(ctx context.Context) (any, error) { return r.start(ctx) })
	if err != nil {
		return dto.StartOutput{}, err
	}
	return value.(dto.StartOutput), nil
}

// Stop ends tracking. A persistence failure is returned together with the finished record.
func (r *Runner) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	value, err := r.do(ctx, func(ctx context.Context) (any, error) { return r.stop(ctx) })
	out, _ := value.(sessiondto.StopOutput)
	return out, err
}

func (r *Runner) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	value, err := r.do(ctx, func(ctx context.Context) (any, error) { return r.snapshot(ctx) })
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	return value.(dto.SnapshotOutput), nil
}

func (r *Runner) History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error) {
	value, err := r.do(ctx, func(ctx context.Context) (any, error) { return r.sessions.History(ctx, limit) })
	if err != nil {
		return nil, err
	}
	return value.([]sessiondto.RecordOutput), nil
}

func (r *Runner) Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error) {
	value, err := r.do(ctx, func(ctx context.Context) (any, error) { return r.sessions.Trend(ctx, days) })
	if err != nil {
		return sessiondto.TrendOutput{}, err
	}
	return value.(sessiondto.TrendOutput), nil
}

func (r *Runner) ResetHistory(ctx context.Context) error {
	_, err := r.do(ctx, func(ctx context.Context) (any, error) { return nil, r.sessions.ResetHistory(ctx) })
	return err
}

// Subscribe returns a stream of phase changes. Events are dropped when the buffer is full.
// The channel closes when cancel is called or the runner exits.
func (r *Runner) Subscribe(buffer int) (<-chan dto.PhaseChange, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan dto.PhaseChange, buffer)
	r.subMu.Lock()
	select {
	case <-r.done:
		r.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subMu.Unlock()

	return ch, func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if sub, ok := r.subs[id]; ok {
			close(sub)
			delete(r.subs, id)
		}
	}
}
