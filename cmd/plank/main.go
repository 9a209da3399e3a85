package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plank/internal/bootstrap"
	sessiondto "plank/internal/modules/session/dto"
	trackerdto "plank/internal/modules/tracker/dto"
	"plank/internal/platform/config"
	"plank/internal/platform/log"
)

type rootOptions struct {
	dataDir string
	debug   bool
}

func main() {
	err := newRootCmd().Execute()
	log.Sync()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "plank",
		Short:         "Plank form coach",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "directory holding config, database and detectors")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newTrackCmd(opts))
	root.AddCommand(newScoreCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newTrendCmd(opts))
	root.AddCommand(newDetectorCmd(opts))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plank"
	}
	return filepath.Join(home, ".plank")
}

// loadApp initialises logging and wires the application. When logToFile is set
// logs go to the data dir so they never touch the terminal.
func loadApp(opts *rootOptions, logToFile bool) (*bootstrap.App, error) {
	cfg, err := config.New(opts.dataDir)
	if err != nil {
		return nil, err
	}
	logPath := ""
	if logToFile {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		logPath = cfg.LogPath
	}
	if err := log.Init(opts.debug, logPath); err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	var replay, detector string
	var loop bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the live plank dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(opts, true)
			if err != nil {
				return err
			}
			defer app.Close()
			if replay != "" || detector != "" {
				if _, err := app.PoseCLI.Attach(context.Background(), replay, detector, loop); err != nil {
					return err
				}
			}
			return bootstrap.RunTUI(app)
		},
	}
	cmd.Flags().StringVar(&replay, "replay", "", "replay file to use as the landmark source")
	cmd.Flags().StringVar(&detector, "detector", "", "detector plugin name")
	cmd.Flags().BoolVar(&loop, "loop", false, "restart the replay when it ends")
	return cmd
}

func newTrackCmd(opts *rootOptions) *cobra.Command {
	var replay, detector string
	var loop, bell bool
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "track (--replay <file> | --detector <name>)",
		Short: "Track one session headless and print phase changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (replay == "") == (detector == "") {
				return fmt.Errorf("exactly one of --replay or --detector is required")
			}
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()

			src, err := app.PoseCLI.Attach(context.Background(), replay, detector, loop)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "source %s %s\n", src.Kind, src.Name)

			stop := app.StartTracker()
			defer stop()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			out, trackErr := app.TrackerCLI.Track(ctx, duration, func(change trackerdto.PhaseChange) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %-11s confidence=%.2f\n", change.At.Local().Format("15:04:05.000"), change.Phase, change.Confidence)
				if bell && change.Phase == "plank" {
					_, _ = fmt.Fprint(cmd.ErrOrStderr(), "\a")
				}
			})
			if out.Recorded {
				printRecord(cmd, out.Record)
			}
			return trackErr
		},
	}
	cmd.Flags().StringVar(&replay, "replay", "", "replay file to use as the landmark source")
	cmd.Flags().StringVar(&detector, "detector", "", "detector plugin name")
	cmd.Flags().BoolVar(&loop, "loop", false, "restart the replay when it ends")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVar(&bell, "bell", false, "ring the terminal bell when a plank starts")
	return cmd
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <file>",
		Short: "Score every frame of a replay file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			frames, err := app.PoseCLI.ScoreReplay(context.Background(), args[0])
			if err != nil {
				return err
			}
			for _, f := range frames {
				if !f.Detected {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%4d absent\n", f.Index)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%4d score=%.3f horizontal=%.3f straightness=%.3f hip_sag=%.3f complete=%t\n",
					f.Index, f.Score, f.Horizontal, f.Straightness, f.HipSag, f.Complete)
			}
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			records, err := app.SessionCLI.History(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, r := range records {
				printRecord(cmd, r)
			}
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 0, "maximum sessions to list (0 lists all)")

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset --yes",
		Short: "Delete all recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			records, err := app.SessionCLI.History(context.Background(), 1)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions to clear")
				return nil
			}
			if !yes {
				return fmt.Errorf("refusing to clear all stored sessions without --yes")
			}
			if err := app.SessionCLI.ResetHistory(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
	resetCmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every stored session")
	history.AddCommand(resetCmd)

	var outDir string
	exportCmd := &cobra.Command{
		Use:   "export --out <dir>",
		Short: "Write each session as a markdown note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(outDir) == "" {
				return fmt.Errorf("--out is required")
			}
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.Export(context.Background(), outDir)
			if err != nil {
				return err
			}
			for _, p := range out.Paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes\n", len(out.Paths))
			return nil
		},
	}
	exportCmd.Flags().StringVar(&outDir, "out", "", "destination directory")
	history.AddCommand(exportCmd)
	return history
}

func newTrendCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show daily plank totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.Trend(context.Background(), days)
			if err != nil {
				return err
			}
			for _, d := range out.Days {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Day.Format("Mon 2006-01-02"), round(d.Plank))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "total=%s active_days=%d mean_per_active_day=%s longest_hold=%s±%s\n",
				round(out.Total), out.ActiveDays, round(out.MeanPerActiveDay), round(out.LongestHoldMean), round(out.LongestHoldStdDev))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days to include")
	return cmd
}

func newDetectorCmd(opts *rootOptions) *cobra.Command {
	detector := &cobra.Command{Use: "detector", Short: "Detector plugin operations"}
	detector.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List detector manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			detectors, err := app.PoseCLI.ListDetectors(context.Background())
			if err != nil {
				return err
			}
			if len(detectors) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no detectors configured")
				return nil
			}
			for _, d := range detectors {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s\n", d.Name, d.Version, d.Enabled, d.Binary)
			}
			return nil
		},
	})

	detector.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate detector checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()
			results, err := app.PoseCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no detectors configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Model != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " model=%s", r.Model)
				}
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})
	return detector
}

func printRecord(cmd *cobra.Command, r sessiondto.RecordOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s plank=%s break=%s longest=%s segments=%d\n",
		r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), round(r.TotalPlank), round(r.TotalBreak), round(r.LongestHold), len(r.Segments))
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Second)
}
