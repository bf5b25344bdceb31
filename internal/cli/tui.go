package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusnest/internal/clock"
	"github.com/sandeepkv93/focusnest/internal/scheduler"
	"github.com/sandeepkv93/focusnest/internal/session"
	"github.com/sandeepkv93/focusnest/internal/update"
)

func runTUI(cmd *cobra.Command, flags *rootFlags) error {
	// The TUI owns the terminal, so logs go to the file only.
	a, err := openApp(flags, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	engine := session.NewEngine(a.cfg.Durations(), a.tracker, session.WithLogger(a.logger))
	driver, err := scheduler.NewDriver(engine, clock.Real{}, time.Second, a.cfg.SchedulerBuffer)
	if err != nil {
		return err
	}
	driver.Start()
	defer driver.Stop()

	m := update.NewModel(update.Deps{
		Engine:               engine,
		Ticks:                driver,
		Counters:             a.tracker,
		Journal:              a.journal,
		Notifier:             update.ExecDesktopNotifier{},
		DesktopNotifications: a.cfg.DesktopNotifications,
		ForestMax:            a.cfg.ForestMax,
		Logger:               a.logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("focusnest tui: %w", err)
	}
	return nil
}
