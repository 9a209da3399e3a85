package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	poseinadapter "plank/internal/modules/pose/adapter/in"
	poseoutadapter "plank/internal/modules/pose/adapter/out"
	posedomain "plank/internal/modules/pose/domain"
	poseservice "plank/internal/modules/pose/service"
	poseusecase "plank/internal/modules/pose/usecase"
	sessioninadapter "plank/internal/modules/session/adapter/in"
	sessionoutadapter "plank/internal/modules/session/adapter/out"
	sessionservice "plank/internal/modules/session/service"
	sessionusecase "plank/internal/modules/session/usecase"
	trackerinadapter "plank/internal/modules/tracker/adapter/in"
	trackeroutadapter "plank/internal/modules/tracker/adapter/out"
	trackerdomain "plank/internal/modules/tracker/domain"
	trackerservice "plank/internal/modules/tracker/service"
	trackerusecase "plank/internal/modules/tracker/usecase"
	"plank/internal/platform/clock"
	"plank/internal/platform/config"
	"plank/internal/platform/id"
	"plank/internal/platform/log"
	uiapp "plank/internal/ui/app"
)

type App struct {
	Config     config.Config
	PoseCLI    poseinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	TrackerCLI trackerinadapter.CLIHandler
	TrackerTUI trackerinadapter.TUIHandler

	runner *trackerservice.Runner
	store  *sessionoutadapter.SQLiteRecordStore
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}

	detectorSvc := poseservice.NewDetectorService(
		poseoutadapter.NewFileManifestStore(cfg.DataDir, cfg.DetectorsPath),
		poseoutadapter.NewGRPCDetectorHost(log.Debugging()),
	)
	poseUC := poseusecase.NewInteractor(
		poseservice.NewPoseService(posedomain.Tolerances{
			Horizontal:   cfg.Scoring.HorizontalToleranceRad,
			Straightness: cfg.Scoring.StraightnessToleranceRad,
			HipSag:       cfg.Scoring.HipSagTolerance,
		}, poseoutadapter.NewYAMLReplayLoader(), detectorSvc),
		detectorSvc,
	)

	store, err := sessionoutadapter.NewSQLiteRecordStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new record store: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(sessionservice.NewSessionService(
		clk,
		ids,
		store,
		sessionoutadapter.NewVaultNoteExporter(),
		cfg.History.Limit,
	))
	if err := sessionUC.Hydrate(context.Background()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("hydrate history: %w", err)
	}

	runner := trackerservice.NewRunner(clk, trackeroutadapter.NewPoseEvaluatorAdapter(poseUC), sessionUC, trackerservice.Options{
		TickInterval: cfg.Tracker.TickInterval,
		Calibration:  cfg.Tracker.Calibration,
		Thresholds: trackerdomain.Thresholds{
			Enter: cfg.Tracker.EnterThreshold,
			Exit:  cfg.Tracker.ExitThreshold,
		},
	})
	trackerUC := trackerusecase.NewInteractor(runner)

	return &App{
		Config:     cfg,
		PoseCLI:    poseinadapter.NewCLIHandler(poseUC),
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		TrackerCLI: trackerinadapter.NewCLIHandler(trackerUC),
		TrackerTUI: trackerinadapter.NewTUIHandler(trackerUC),
		runner:     runner,
		store:      store,
	}, nil
}

// StartTracker runs the tracker loop until the returned stop func is called.
// stop waits for the loop to finish, which includes stopping any active session.
func (a *App) StartTracker() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.runner.Run(ctx); err != nil {
			log.Errorw("tracker loop exited", "error", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// Close releases the landmark source and the database.
func (a *App) Close() error {
	detachErr := a.PoseCLI.Detach(context.Background())
	closeErr := a.store.Close()
	return errors.Join(detachErr, closeErr)
}

func RunTUI(app *App) error {
	stop := app.StartTracker()
	defer stop()

	program := tea.NewProgram(uiapp.NewModel(app.TrackerTUI), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
