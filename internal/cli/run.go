package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusnest/internal/clock"
	"github.com/sandeepkv93/focusnest/internal/model"
	"github.com/sandeepkv93/focusnest/internal/scheduler"
	"github.com/sandeepkv93/focusnest/internal/session"
)

var errHeadlessRequired = errors.New("run: only --headless mode is supported, start the TUI with plain focusnest")

type runFlags struct {
	headless     bool
	focusMinutes int
	breakMinutes int
	cycles       int
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer without a UI, logging phase changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rf.headless {
				return errHeadlessRequired
			}
			a, err := openApp(flags, appOptions{stderrLogs: true})
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.cfg.Durations()
			if cmd.Flags().Changed("focus") {
				d.FocusMinutes = rf.focusMinutes
			}
			if cmd.Flags().Changed("break") {
				d.BreakMinutes = rf.breakMinutes
			}

			engine := session.NewEngine(d, a.tracker, session.WithLogger(a.logger))
			driver, err := scheduler.NewDriver(engine, clock.Real{}, time.Second, a.cfg.SchedulerBuffer)
			if err != nil {
				return err
			}
			driver.Start()
			defer driver.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			snap := engine.Start()
			driver.Resync()
			a.logger.Info("session started", "phase", snap.Phase, "focus_minutes", snap.FocusMinutes, "break_minutes", snap.BreakMinutes)

			done := runHeadless(ctx, driver.C(), a.logger, rf.cycles)
			a.logger.Info("session stopped", "completed", done, "dropped_ticks", driver.Dropped())
			return nil
		},
	}
	cmd.Flags().BoolVar(&rf.headless, "headless", false, "Run without the TUI")
	cmd.Flags().IntVar(&rf.focusMinutes, "focus", model.DefaultFocusMinutes, "Focus minutes for this run (clamped to 1-180)")
	cmd.Flags().IntVar(&rf.breakMinutes, "break", model.DefaultBreakMinutes, "Break minutes for this run (clamped to 1-60)")
	cmd.Flags().IntVar(&rf.cycles, "cycles", 0, "Stop after this many completed focus sessions (0 runs until interrupted)")
	return cmd
}

// runHeadless logs engine events until ctx ends, events closes, or cycles
// focus sessions complete. It returns the number of completions seen.
func runHeadless(ctx context.Context, events <-chan session.Event, logger *slog.Logger, cycles int) int {
	completed := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("received shutdown signal")
			return completed
		case ev, ok := <-events:
			if !ok {
				return completed
			}
			if !ev.Expired {
				logger.Debug("tick", "phase", ev.Snapshot.Phase, "remaining", ev.Snapshot.SecondsRemaining)
				continue
			}
			logger.Info("phase expired",
				"phase", ev.ExpiredPhase,
				"next", ev.Snapshot.Phase,
				"recorded", ev.Recorded,
			)
			if ev.Recorded {
				completed++
				logger.Info("focus session recorded", "today", ev.Counters.Today, "total", ev.Counters.Total)
			}
			if cycles > 0 && completed >= cycles {
				return completed
			}
		}
	}
}
